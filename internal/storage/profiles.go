package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/thenexusengine/tne_adbridge/internal/partner"
	"github.com/thenexusengine/tne_adbridge/pkg/redis"
)

// profileKeyPrefix namespaces placement profiles in Redis
const profileKeyPrefix = "vantage:placement:"

// ProfileStore keeps simulator placement profiles in Redis so harness
// instances share one view of how each placement behaves. Profiles are
// stored as hashes under vantage:placement:<id>.
type ProfileStore struct {
	client *redis.Client
}

// NewProfileStore creates a profile store over an existing Redis client
func NewProfileStore(client *redis.Client) *ProfileStore {
	return &ProfileStore{client: client}
}

// Get fetches the profile for a placement. A placement with no stored
// profile returns nil with no error.
func (s *ProfileStore) Get(ctx context.Context, placementID string) (*partner.Profile, error) {
	fields, err := s.client.HGetAll(ctx, profileKeyPrefix+placementID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", placementID, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	p := &partner.Profile{
		Outcome:            partner.Outcome(fields["outcome"]),
		ErrorCode:          partner.ErrorCode(fields["error_code"]),
		LoadDelay:          millisField(fields, "load_delay_ms"),
		ShowDelay:          millisField(fields, "show_delay_ms"),
		DuplicateCallbacks: boolField(fields, "duplicate_callbacks"),
		EmitClick:          boolField(fields, "emit_click"),
		EmitReward:         boolField(fields, "emit_reward"),
		RewardLabel:        fields["reward_label"],
		RewardAmount:       intField(fields, "reward_amount"),
		DismissDelay:       millisField(fields, "dismiss_delay_ms"),
	}
	return p, nil
}

// Set stores the profile for a placement
func (s *ProfileStore) Set(ctx context.Context, placementID string, p partner.Profile) error {
	key := profileKeyPrefix + placementID

	fields := map[string]interface{}{
		"outcome":             string(p.Outcome),
		"error_code":          string(p.ErrorCode),
		"load_delay_ms":       p.LoadDelay.Milliseconds(),
		"show_delay_ms":       p.ShowDelay.Milliseconds(),
		"duplicate_callbacks": strconv.FormatBool(p.DuplicateCallbacks),
		"emit_click":          strconv.FormatBool(p.EmitClick),
		"emit_reward":         strconv.FormatBool(p.EmitReward),
		"reward_label":        p.RewardLabel,
		"reward_amount":       p.RewardAmount,
		"dismiss_delay_ms":    p.DismissDelay.Milliseconds(),
	}

	for field, value := range fields {
		if err := s.client.HSet(ctx, key, field, value); err != nil {
			return fmt.Errorf("failed to store profile for %s: %w", placementID, err)
		}
	}
	return nil
}

func millisField(fields map[string]string, name string) time.Duration {
	return time.Duration(intField(fields, name)) * time.Millisecond
}

func intField(fields map[string]string, name string) int {
	n, _ := strconv.Atoi(fields[name])
	return n
}

func boolField(fields map[string]string, name string) bool {
	b, _ := strconv.ParseBool(fields[name])
	return b
}
