package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/candleco/callback-service/internal/entity"
	"github.com/candleco/callback-service/internal/usecase"
)

const leadIndexKey = "leads:by_created"

// RedisLeadRepository keeps each lead as a hash at lead:{id}, its event
// history as a list at lead:{id}:events and a createdAt-scored zset index
// for listing. HSetNX gives the conditional create, RPush the atomic
// append; field updates are hash merges with no concurrency token.
type RedisLeadRepository struct {
	Client *redis.Client
}

// NewRedisClient opens the connection and proves it with a ping.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisLeadRepository(client *redis.Client) *RedisLeadRepository {
	return &RedisLeadRepository{Client: client}
}

func leadKey(id string) string   { return "lead:" + id }
func eventsKey(id string) string { return "lead:" + id + ":events" }

func (r *RedisLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	key := leadKey(lead.LeadID)

	// Claiming the leadId field is the conditional create: losing the race
	// fails loudly instead of overwriting.
	created, err := r.Client.HSetNX(ctx, key, "leadId", lead.LeadID).Result()
	if err != nil {
		return err
	}
	if !created {
		return usecase.ErrDuplicateLead
	}

	fields := map[string]any{
		"name":             lead.Name,
		"phone":            lead.Phone,
		"consent":          strconv.FormatBool(lead.Consent),
		"consentTimestamp": lead.ConsentTimestamp,
		"status":           lead.Status,
		"createdAt":        lead.CreatedAt,
		"updatedAt":        lead.UpdatedAt,
	}
	if err := r.Client.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}

	score := float64(parseCreatedAt(lead.CreatedAt).UnixNano())
	return r.Client.ZAdd(ctx, leadIndexKey, redis.Z{Score: score, Member: lead.LeadID}).Err()
}

func (r *RedisLeadRepository) Update(ctx context.Context, leadID string, update entity.LeadUpdate) (*entity.Lead, error) {
	key := leadKey(leadID)

	exists, err := r.Client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, usecase.ErrLeadNotFound
	}

	fields := map[string]any{
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	}
	setField(fields, "status", update.Status)
	setField(fields, "providerCallId", update.ProviderCallID)
	setField(fields, "transcription", update.Transcription)
	setField(fields, "recordingUrl", update.RecordingURL)
	setField(fields, "callDuration", update.CallDuration)
	setField(fields, "errorMessage", update.ErrorMessage)
	setField(fields, "interestedContact", update.InterestedContact)
	if update.Consent != nil {
		fields["consent"] = strconv.FormatBool(*update.Consent)
	}

	if err := r.Client.HSet(ctx, key, fields).Err(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, leadID)
}

func (r *RedisLeadRepository) AppendEvent(ctx context.Context, leadID string, event entity.LeadEvent) error {
	key := leadKey(leadID)

	exists, err := r.Client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return usecase.ErrLeadNotFound
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := r.Client.TxPipeline()
	pipe.RPush(ctx, eventsKey(leadID), raw)
	pipe.HSet(ctx, key, "updatedAt", time.Now().UTC().Format(time.RFC3339))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisLeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	ids, err := r.Client.ZRevRange(ctx, leadIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	leads := make([]*entity.Lead, 0, len(ids))
	for _, id := range ids {
		lead, err := r.GetByID(ctx, id)
		if err == usecase.ErrLeadNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func (r *RedisLeadRepository) GetByID(ctx context.Context, leadID string) (*entity.Lead, error) {
	fields, err := r.Client.HGetAll(ctx, leadKey(leadID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, usecase.ErrLeadNotFound
	}

	lead := &entity.Lead{
		LeadID:            fields["leadId"],
		Name:              fields["name"],
		Phone:             fields["phone"],
		Consent:           fields["consent"] == "true",
		ConsentTimestamp:  fields["consentTimestamp"],
		Status:            fields["status"],
		CreatedAt:         fields["createdAt"],
		UpdatedAt:         fields["updatedAt"],
		Events:            []entity.LeadEvent{},
		ProviderCallID:    fields["providerCallId"],
		Transcription:     fields["transcription"],
		RecordingURL:      fields["recordingUrl"],
		CallDuration:      fields["callDuration"],
		ErrorMessage:      fields["errorMessage"],
		InterestedContact: fields["interestedContact"],
	}

	rawEvents, err := r.Client.LRange(ctx, eventsKey(leadID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	for _, raw := range rawEvents {
		var event entity.LeadEvent
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return nil, fmt.Errorf("corrupt event on lead %s: %w", leadID, err)
		}
		lead.Events = append(lead.Events, event)
	}
	return lead, nil
}

func setField(fields map[string]any, name string, value *string) {
	if value != nil {
		fields[name] = *value
	}
}

func parseCreatedAt(createdAt string) time.Time {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}
