package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// updateIfExists applies HSET/HDEL only when the hash exists and returns the
// resulting hash. ARGV[1] is the number of field/value pairs that follow; any
// remaining arguments are fields to delete.
var updateIfExists = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
local n = tonumber(ARGV[1])
if n > 0 then
  redis.call('HSET', KEYS[1], unpack(ARGV, 2, 1 + 2 * n))
end
for i = 2 + 2 * n, #ARGV do
  redis.call('HDEL', KEYS[1], ARGV[i])
end
return redis.call('HGETALL', KEYS[1])
`)

const scanBatchSize = 100

type redisTicketRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisTicketRepository stores each ticket as a hash under prefix+id.
func NewRedisTicketRepository(client redis.UniversalClient, prefix string) TicketRepository {
	return &redisTicketRepository{client: client, prefix: prefix}
}

func (r *redisTicketRepository) key(id string) string {
	return r.prefix + id
}

func (r *redisTicketRepository) Put(ctx context.Context, ticket *domain.Ticket) error {
	if err := r.client.HSet(ctx, r.key(ticket.ID), ticketToHash(ticket)).Err(); err != nil {
		return fmt.Errorf("put ticket: %w", err)
	}
	return nil
}

func (r *redisTicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return ticketFromHash(fields)
}

func (r *redisTicketRepository) Scan(ctx context.Context) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		fields, err := r.client.HGetAll(ctx, iter.Val()).Result()
		if err != nil {
			return nil, fmt.Errorf("scan tickets: %w", err)
		}
		// deleted between SCAN and HGETALL
		if len(fields) == 0 {
			continue
		}
		ticket, err := ticketFromHash(fields)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan tickets: %w", err)
	}
	return result, nil
}

func (r *redisTicketRepository) Update(ctx context.Context, id string, changes domain.TicketChanges) (*domain.Ticket, error) {
	reply, err := updateIfExists.Run(ctx, r.client, []string{r.key(id)}, redisUpdateArgs(changes)...).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, ErrConditionFailed
	}
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	fields, err := pairsToMap(reply)
	if err != nil {
		return nil, err
	}
	return ticketFromHash(fields)
}

func (r *redisTicketRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	if removed == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (r *redisTicketRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func redisUpdateArgs(changes domain.TicketChanges) []any {
	pairs := []any{"updatedAt", formatTimestamp(changes.UpdatedAt)}
	var removals []any
	if changes.Title != nil {
		pairs = append(pairs, "title", *changes.Title)
	}
	if changes.Description != nil {
		pairs = append(pairs, "description", *changes.Description)
	}
	if changes.Status != nil {
		pairs = append(pairs, "status", string(*changes.Status))
	}
	if changes.Priority != nil {
		pairs = append(pairs, "priority", string(*changes.Priority))
	}
	if changes.Type != nil {
		pairs = append(pairs, "type", string(*changes.Type))
	}
	if changes.SetAssignedTo {
		if changes.AssignedToID == nil {
			removals = append(removals, "assignedToId")
		} else {
			pairs = append(pairs, "assignedToId", *changes.AssignedToID)
		}
	}

	args := make([]any, 0, 1+len(pairs)+len(removals))
	args = append(args, strconv.Itoa(len(pairs)/2))
	args = append(args, pairs...)
	return append(args, removals...)
}

func ticketToHash(t *domain.Ticket) map[string]any {
	fields := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"reporterId":  t.ReporterID,
		"priority":    string(t.Priority),
		"type":        string(t.Type),
		"createdAt":   formatTimestamp(t.CreatedAt),
		"updatedAt":   formatTimestamp(t.UpdatedAt),
	}
	if t.AssignedToID != nil {
		fields["assignedToId"] = *t.AssignedToID
	}
	return fields
}

func ticketFromHash(fields map[string]string) (*domain.Ticket, error) {
	createdAt, err := parseTimestamp(fields["createdAt"])
	if err != nil {
		return nil, fmt.Errorf("ticket %s createdAt: %w", fields["id"], err)
	}
	updatedAt, err := parseTimestamp(fields["updatedAt"])
	if err != nil {
		return nil, fmt.Errorf("ticket %s updatedAt: %w", fields["id"], err)
	}
	ticket := &domain.Ticket{
		ID:          fields["id"],
		Title:       fields["title"],
		Description: fields["description"],
		Status:      domain.TicketStatus(fields["status"]),
		ReporterID:  fields["reporterId"],
		Priority:    domain.TicketPriority(fields["priority"]),
		Type:        domain.TicketType(fields["type"]),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if assignee, ok := fields["assignedToId"]; ok {
		ticket.AssignedToID = &assignee
	}
	return ticket, nil
}

func pairsToMap(reply []any) (map[string]string, error) {
	if len(reply)%2 != 0 {
		return nil, fmt.Errorf("unexpected HGETALL reply length %d", len(reply))
	}
	fields := make(map[string]string, len(reply)/2)
	for i := 0; i < len(reply); i += 2 {
		k, kok := reply[i].(string)
		v, vok := reply[i+1].(string)
		if !kok || !vok {
			return nil, fmt.Errorf("unexpected HGETALL reply element types %T/%T", reply[i], reply[i+1])
		}
		fields[k] = v
	}
	return fields, nil
}
