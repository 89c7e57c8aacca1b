package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lettings/internal/inspection/models"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
)

// Every key for a property shares the {propertyID} hash tag so the scripts
// below stay on one cluster slot.
const keyPrefix = "inspection:"

const configureAttempts = 3

// reserveScript is the whole reserve decision: slot exists, tenant holds
// nothing or the same slot, then write tenant hash, slot set and booking.
var reserveScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
local idx = tonumber(ARGV[1])
if idx < 0 or idx >= count then
	return {'not_found'}
end
local cur = redis.call('HMGET', KEYS[2], 'booking_id', 'index', 'reserved_at')
if cur[1] then
	if cur[2] == ARGV[1] then
		return {'exists', cur[1], cur[2], cur[3]}
	end
	return {'booked', cur[1], cur[2], cur[3]}
end
redis.call('HSET', KEYS[2], 'booking_id', ARGV[3], 'index', ARGV[1], 'reserved_at', ARGV[4])
redis.call('SADD', KEYS[3], ARGV[2])
redis.call('SET', KEYS[4], ARGV[2])
redis.call('INCR', KEYS[5])
return {'created', ARGV[3], ARGV[1], ARGV[4]}
`)

var cancelScript = redis.NewScript(`
local cur = redis.call('HMGET', KEYS[1], 'booking_id', 'index')
if cur[1] ~= ARGV[1] or cur[2] ~= ARGV[2] then
	return 0
end
redis.call('DEL', KEYS[1], KEYS[2])
redis.call('SREM', KEYS[3], ARGV[3])
redis.call('INCR', KEYS[4])
return 1
`)

// RedisStore keeps the registry in Redis. Reserve and cancel are Lua
// scripts; ConfigureSlots is an optimistic WATCH on the property's version
// key, which both scripts bump.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type slotJSON struct {
	InspectionID string `json:"inspection_id"`
	Index        int    `json:"index"`
	Start        int64  `json:"start"` // Unix nano
	End          int64  `json:"end"`   // Unix nano
}

func propertyTag(propertyID id.PropertyID) string {
	return keyPrefix + "{" + propertyID.String() + "}:"
}

func slotsKey(p id.PropertyID) string   { return propertyTag(p) + "slots" }
func countKey(p id.PropertyID) string   { return propertyTag(p) + "slot_count" }
func versionKey(p id.PropertyID) string { return propertyTag(p) + "version" }

func slotTenantsKey(p id.PropertyID, index int) string {
	return propertyTag(p) + "slot:" + strconv.Itoa(index) + ":tenants"
}

func tenantKey(p id.PropertyID, t id.TenantID) string {
	return propertyTag(p) + "tenant:" + t.String()
}

func bookingKey(p id.PropertyID, b id.BookingID) string {
	return propertyTag(p) + "booking:" + b.String()
}

func (s *RedisStore) ConfigureSlots(ctx context.Context, propertyID id.PropertyID, windows []models.Window) ([]models.Slot, error) {
	for range configureAttempts {
		err := s.configureOnce(ctx, propertyID, windows)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.ListSlots(ctx, propertyID)
	}
	return nil, fmt.Errorf("configure slots: version kept changing: %w", sentinel.ErrUnavailable)
}

func (s *RedisStore) configureOnce(ctx context.Context, propertyID id.PropertyID, windows []models.Window) error {
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := loadSlots(ctx, tx, propertyID)
		if err != nil {
			return err
		}
		for _, slot := range current[min(len(windows), len(current)):] {
			n, err := tx.SCard(ctx, slotTenantsKey(propertyID, slot.Index)).Result()
			if err != nil {
				return fmt.Errorf("count slot tenants: %w", err)
			}
			if n > 0 {
				return sentinel.ErrConflict
			}
		}

		next := make([]slotJSON, len(windows))
		for i, w := range windows {
			inspectionID := uuid.UUID(id.NewInspectionID()).String()
			if i < len(current) {
				inspectionID = current[i].InspectionID
			}
			next[i] = slotJSON{InspectionID: inspectionID, Index: i, Start: w.Start.UnixNano(), End: w.End.UnixNano()}
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal slots: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, slotsKey(propertyID), data, 0)
			pipe.Set(ctx, countKey(propertyID), len(next), 0)
			pipe.Incr(ctx, versionKey(propertyID))
			return nil
		})
		return err
	}, versionKey(propertyID))
}

func loadSlots(ctx context.Context, c redis.Cmdable, propertyID id.PropertyID) ([]slotJSON, error) {
	data, err := c.Get(ctx, slotsKey(propertyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get slots: %w", err)
	}
	var slots []slotJSON
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("unmarshal slots: %w", err)
	}
	return slots, nil
}

func (s *RedisStore) ListSlots(ctx context.Context, propertyID id.PropertyID) ([]models.Slot, error) {
	raw, err := loadSlots(ctx, s.client, propertyID)
	if err != nil {
		return nil, err
	}

	members := make([]*redis.StringSliceCmd, len(raw))
	if len(raw) > 0 {
		_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, slot := range raw {
				members[i] = pipe.SMembers(ctx, slotTenantsKey(propertyID, slot.Index))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load slot tenants: %w", err)
		}
	}

	slots := make([]models.Slot, 0, len(raw))
	for i, j := range raw {
		inspectionID, err := uuid.Parse(j.InspectionID)
		if err != nil {
			return nil, fmt.Errorf("parse inspection id: %w", err)
		}
		slot := models.Slot{
			InspectionID: id.InspectionID(inspectionID),
			PropertyID:   propertyID,
			Index:        j.Index,
			Start:        time.Unix(0, j.Start).UTC(),
			End:          time.Unix(0, j.End).UTC(),
		}
		for _, m := range members[i].Val() {
			tenantID, err := uuid.Parse(m)
			if err != nil {
				return nil, fmt.Errorf("parse tenant id: %w", err)
			}
			slot.ReservedTenantIDs = append(slot.ReservedTenantIDs, id.TenantID(tenantID))
		}
		slot.SortTenants()
		slots = append(slots, slot)
	}
	return slots, nil
}

func (s *RedisStore) Reserve(ctx context.Context, r models.Reservation) (models.ReserveResult, error) {
	keys := []string{
		countKey(r.PropertyID),
		tenantKey(r.PropertyID, r.TenantID),
		slotTenantsKey(r.PropertyID, r.InspectionIndex),
		bookingKey(r.PropertyID, r.BookingID),
		versionKey(r.PropertyID),
	}
	reply, err := reserveScript.Run(ctx, s.client, keys,
		r.InspectionIndex, r.TenantID.String(), r.BookingID.String(), r.ReservedAt.UnixNano(),
	).StringSlice()
	if err != nil {
		return models.ReserveResult{}, fmt.Errorf("reserve script: %w", err)
	}

	switch reply[0] {
	case "not_found":
		return models.ReserveResult{}, sentinel.ErrNotFound
	case "created":
		return models.ReserveResult{Reservation: r, Created: true}, nil
	}

	existing, err := reservationFromReply(r.PropertyID, r.TenantID, reply[1:])
	if err != nil {
		return models.ReserveResult{}, err
	}
	if reply[0] == "booked" {
		return models.ReserveResult{Reservation: existing}, sentinel.ErrAlreadyUsed
	}
	return models.ReserveResult{Reservation: existing}, nil
}

// reservationFromReply decodes [booking_id, index, reserved_at].
func reservationFromReply(propertyID id.PropertyID, tenantID id.TenantID, fields []string) (models.Reservation, error) {
	if len(fields) != 3 {
		return models.Reservation{}, fmt.Errorf("malformed reservation: %d fields", len(fields))
	}
	bookingID, err := uuid.Parse(fields[0])
	if err != nil {
		return models.Reservation{}, fmt.Errorf("parse booking id: %w", err)
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil {
		return models.Reservation{}, fmt.Errorf("parse inspection index: %w", err)
	}
	nanos, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("parse reserved_at: %w", err)
	}
	return models.Reservation{
		BookingID:       id.BookingID(bookingID),
		PropertyID:      propertyID,
		TenantID:        tenantID,
		InspectionIndex: index,
		ReservedAt:      time.Unix(0, nanos).UTC(),
	}, nil
}

func (s *RedisStore) FindReservation(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*models.Reservation, error) {
	vals, err := s.client.HMGet(ctx, tenantKey(propertyID, tenantID), "booking_id", "index", "reserved_at").Result()
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	fields := make([]string, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			return nil, sentinel.ErrNotFound
		}
		fields = append(fields, str)
	}
	r, err := reservationFromReply(propertyID, tenantID, fields)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RedisStore) FindBooking(ctx context.Context, propertyID id.PropertyID, bookingID id.BookingID) (*models.Reservation, error) {
	raw, err := s.client.Get(ctx, bookingKey(propertyID, bookingID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse booking tenant: %w", err)
	}
	r, err := s.FindReservation(ctx, propertyID, id.TenantID(tenantID))
	if err != nil {
		return nil, err
	}
	if r.BookingID != bookingID {
		return nil, sentinel.ErrNotFound
	}
	return r, nil
}

func (s *RedisStore) Cancel(ctx context.Context, r models.Reservation) error {
	keys := []string{
		tenantKey(r.PropertyID, r.TenantID),
		bookingKey(r.PropertyID, r.BookingID),
		slotTenantsKey(r.PropertyID, r.InspectionIndex),
		versionKey(r.PropertyID),
	}
	removed, err := cancelScript.Run(ctx, s.client, keys,
		r.BookingID.String(), strconv.Itoa(r.InspectionIndex), r.TenantID.String(),
	).Int()
	if err != nil {
		return fmt.Errorf("cancel script: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
