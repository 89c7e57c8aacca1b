//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"

	id "lettings/pkg/domain"
	"lettings/pkg/testutil"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the lettings API is running$`, tc.apiIsRunning)
	ctx.Step(`^agent "([^"]*)" has published a listing with (\d+) inspection windows?$`, tc.publishedListing)

	// Inspection steps
	ctx.Step(`^tenant "([^"]*)" reserves inspection (\d+)$`, tc.reserveInspection)
	ctx.Step(`^inspection (\d+) should be held by "([^"]*)" and "([^"]*)"$`, tc.inspectionHeldBy)

	// Application steps
	ctx.Step(`^tenant "([^"]*)" submits an application$`, tc.submitApplication)
	ctx.Step(`^agent "([^"]*)" accepts the application of "([^"]*)"$`, tc.agentAccepts)
	ctx.Step(`^landlord "([^"]*)" approves the application of "([^"]*)"$`, tc.landlordApproves)
	ctx.Step(`^agent "([^"]*)" sends accepted applications to the landlord$`, tc.sendToLandlord)
	ctx.Step(`^landlord "([^"]*)" sends approved applications to the agent$`, tc.sendToAgentFinal)
	ctx.Step(`^the application of "([^"]*)" should have status "([^"]*)"$`, tc.applicationShouldHaveStatus)

	// Gating and listing steps
	ctx.Step(`^the "([^"]*)" count should be (\d+)$`, tc.classCountShouldBe)
	ctx.Step(`^the listing status should be "([^"]*)"$`, tc.listingStatusShouldBe)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.expectStatus)
	ctx.Step(`^the response error should be "([^"]*)"$`, tc.responseErrorShouldBe)
}

// viewer is the agent used for read-back assertions.
const viewer = "__viewer"

func (tc *TestContext) apiIsRunning(ctx context.Context) error {
	if err := tc.Do(http.MethodGet, "/health/live", "", nil); err != nil {
		return err
	}
	if _, err := tc.actor(viewer, id.RoleAgent); err != nil {
		return err
	}
	return tc.expectStatus(http.StatusOK)
}

func (tc *TestContext) publishedListing(ctx context.Context, agent string, windows int) error {
	if _, err := tc.actor(agent, id.RoleAgent); err != nil {
		return err
	}
	tc.PropertyID = id.PropertyID(uuid.New())

	if err := tc.Do(http.MethodPost, tc.propertyPath("/listing"), agent, nil); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusCreated); err != nil {
		return err
	}
	if err := tc.Do(http.MethodPost, tc.propertyPath("/listing/publish"), agent, nil); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}

	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	body := map[string]any{"windows": testutil.Windows(start, windows, 30*time.Minute)}
	if err := tc.Do(http.MethodPut, tc.propertyPath("/inspections"), agent, body); err != nil {
		return err
	}
	return tc.expectStatus(http.StatusOK)
}

func (tc *TestContext) reserveInspection(ctx context.Context, tenant string, index int) error {
	if _, err := tc.actor(tenant, id.RoleTenant); err != nil {
		return err
	}
	return tc.Do(http.MethodPost, tc.propertyPath(fmt.Sprintf("/inspections/%d/reservations", index)), tenant, map[string]any{})
}

func (tc *TestContext) inspectionHeldBy(ctx context.Context, index int, first, second string) error {
	if err := tc.Do(http.MethodGet, tc.propertyPath("/inspections"), viewer, nil); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}
	var body struct {
		Slots []struct {
			InspectionIndex   int      `json:"inspection_index"`
			ReservedTenantIDs []string `json:"reserved_tenant_ids"`
		} `json:"slots"`
	}
	if err := tc.decode(&body); err != nil {
		return err
	}

	want := []string{tc.actors[first].AsTenant().String(), tc.actors[second].AsTenant().String()}
	slices.Sort(want)
	for _, slot := range body.Slots {
		if slot.InspectionIndex != index {
			continue
		}
		got := slices.Clone(slot.ReservedTenantIDs)
		slices.Sort(got)
		if !slices.Equal(got, want) {
			return fmt.Errorf("inspection %d held by %v, want %v", index, got, want)
		}
		return nil
	}
	return fmt.Errorf("inspection %d not found", index)
}

type applicationBody struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}

func (tc *TestContext) submitApplication(ctx context.Context, tenant string) error {
	if _, err := tc.actor(tenant, id.RoleTenant); err != nil {
		return err
	}
	if err := tc.Do(http.MethodPost, tc.propertyPath("/applications"), tenant, map[string]any{}); err != nil {
		return err
	}
	if tc.LastResponse.StatusCode != http.StatusCreated {
		return nil
	}
	var app applicationBody
	if err := tc.decode(&app); err != nil {
		return err
	}
	tc.applications[tenant] = &trackedApplication{ID: app.ApplicationID, Status: app.Status}
	return nil
}

func (tc *TestContext) tracked(tenant string) (*trackedApplication, error) {
	app, ok := tc.applications[tenant]
	if !ok {
		return nil, fmt.Errorf("tenant %s has no application", tenant)
	}
	return app, nil
}

func (tc *TestContext) agentAccepts(ctx context.Context, agent, tenant string) error {
	return tc.accept(agent, id.RoleAgent, tenant)
}

func (tc *TestContext) landlordApproves(ctx context.Context, landlord, tenant string) error {
	return tc.accept(landlord, id.RoleLandlord, tenant)
}

// accept serves both decisions; the server picks the edge from the caller's
// role and the expected status.
func (tc *TestContext) accept(decider string, role id.Role, tenant string) error {
	if _, err := tc.actor(decider, role); err != nil {
		return err
	}
	app, err := tc.tracked(tenant)
	if err != nil {
		return err
	}
	body := map[string]any{"expected_status": app.Status}
	if err := tc.Do(http.MethodPost, "/applications/"+app.ID+"/accept", decider, body); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}
	var updated applicationBody
	if err := tc.decode(&updated); err != nil {
		return err
	}
	app.Status = updated.Status
	return nil
}

func (tc *TestContext) sendToLandlord(ctx context.Context, agent string) error {
	if _, err := tc.actor(agent, id.RoleAgent); err != nil {
		return err
	}
	return tc.batch("/applications/send-to-landlord", agent)
}

func (tc *TestContext) sendToAgentFinal(ctx context.Context, landlord string) error {
	if _, err := tc.actor(landlord, id.RoleLandlord); err != nil {
		return err
	}
	return tc.batch("/applications/send-to-agent-final", landlord)
}

func (tc *TestContext) batch(suffix, as string) error {
	if err := tc.Do(http.MethodPost, tc.propertyPath(suffix), as, nil); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}
	var body struct {
		Results []struct {
			ApplicationID string `json:"application_id"`
			To            string `json:"to"`
			Error         string `json:"error"`
		} `json:"results"`
	}
	if err := tc.decode(&body); err != nil {
		return err
	}
	for _, r := range body.Results {
		if r.Error != "" {
			continue
		}
		for _, app := range tc.applications {
			if app.ID == r.ApplicationID {
				app.Status = r.To
			}
		}
	}
	return nil
}

func (tc *TestContext) applicationShouldHaveStatus(ctx context.Context, tenant, status string) error {
	app, err := tc.tracked(tenant)
	if err != nil {
		return err
	}
	if err := tc.Do(http.MethodGet, "/applications/"+app.ID, viewer, nil); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}
	var got applicationBody
	if err := tc.decode(&got); err != nil {
		return err
	}
	if got.Status != status {
		return fmt.Errorf("application of %s is %s, want %s", tenant, got.Status, status)
	}
	return nil
}

func (tc *TestContext) classCountShouldBe(ctx context.Context, class string, want int) error {
	if err := tc.Do(http.MethodGet, tc.propertyPath("/gating/"+class), viewer, nil); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}
	var body struct {
		Count  int  `json:"count"`
		HasAny bool `json:"has_any"`
	}
	if err := tc.decode(&body); err != nil {
		return err
	}
	if body.Count != want || body.HasAny != (want > 0) {
		return fmt.Errorf("%s count is %d (has_any=%t), want %d", class, body.Count, body.HasAny, want)
	}
	return nil
}

func (tc *TestContext) listingStatusShouldBe(ctx context.Context, status string) error {
	if err := tc.Do(http.MethodGet, tc.propertyPath("/listing"), viewer, nil); err != nil {
		return err
	}
	if err := tc.expectStatus(http.StatusOK); err != nil {
		return err
	}
	got, err := tc.GetResponseField("status")
	if err != nil {
		return err
	}
	if got != status {
		return fmt.Errorf("listing status is %v, want %s", got, status)
	}
	return nil
}

func (tc *TestContext) responseErrorShouldBe(ctx context.Context, code string) error {
	got, err := tc.GetResponseField("error")
	if err != nil {
		return err
	}
	if got != code {
		return fmt.Errorf("error is %v, want %s: %s", got, code, string(tc.LastResponseBody))
	}
	return nil
}
