package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/quandary-app/quandary/internal/entity"
)

// InboxEntry is one notification in a snapshot, stripped of timestamps so
// snapshots depend only on scenario content.
type InboxEntry struct {
	Type     string `json:"type"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	EntityID string `json:"entity_id"`
	PostID   string `json:"post_id,omitempty"`
	IsRead   bool   `json:"is_read"`
}

// Snapshot captures the trace and every user's final inbox for golden
// comparison. All ids are deterministic (sequential generator, fixed
// setup ids), so two runs of the same scenario are byte-identical.
type Snapshot struct {
	ScenarioName string                  `json:"scenario_name"`
	Trace        []TraceEvent            `json:"trace"`
	Inboxes      map[string][]InboxEntry `json:"inboxes"`
}

// BuildSnapshot assembles the snapshot for a completed run.
func (r *Result) BuildSnapshot() (*Snapshot, error) {
	ctx := context.Background()

	snap := &Snapshot{
		ScenarioName: r.Scenario.Name,
		Trace:        r.Trace,
		Inboxes:      map[string][]InboxEntry{},
	}

	for _, u := range r.Scenario.Users {
		id, err := r.h.resolve(u.Ref)
		if err != nil {
			return nil, err
		}
		inbox, err := r.h.engine.ListByReceiver(ctx, entity.UserID(id))
		if err != nil {
			return nil, err
		}
		entries := make([]InboxEntry, len(inbox))
		for i, n := range inbox {
			entries[i] = InboxEntry{
				Type:     string(n.Type),
				Sender:   string(n.Sender),
				Receiver: string(n.Receiver),
				EntityID: n.EntityID,
				PostID:   string(n.PostID),
				IsRead:   n.IsRead,
			}
		}
		snap.Inboxes[u.Ref] = entries
	}

	return snap, nil
}

// RunWithGolden executes a scenario, checks its assertions and compares
// the snapshot against testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario, dir string) error {
	t.Helper()

	result, err := Run(sc, dir)
	if err != nil {
		return err
	}
	defer result.Close()

	if err := result.CheckAssertions(); err != nil {
		return err
	}

	snap, err := result.BuildSnapshot()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	g := goldie.New(t)
	g.Assert(t, sc.Name, data)
	return nil
}
