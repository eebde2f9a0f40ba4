// Package harness runs conformance scenarios against the backend core.
//
// Scenarios are YAML files: a setup block establishing users and posts, a
// flow of operations with expected outcomes, and assertions over the
// final state. Execution is fully deterministic - sequential IDs and a
// deterministic clock - so the recorded trace can be compared against a
// golden file.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Users are accounts created before the flow runs. Each registers
	// its Ref for later steps.
	Users []UserSetup `yaml:"users"`

	// Posts are posts created before the flow runs, attributed to a
	// previously registered user.
	Posts []PostSetup `yaml:"posts,omitempty"`

	// Flow contains the operations under test, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state after the flow completes.
	Assertions []Assertion `yaml:"assertions"`
}

// UserSetup creates an account during setup.
type UserSetup struct {
	// Ref is the handle later steps use to reference this user.
	Ref   string `yaml:"ref"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// PostSetup creates a post during setup.
type PostSetup struct {
	Ref      string `yaml:"ref"`
	Title    string `yaml:"title"`
	Question string `yaml:"question"`
	// Creator references a user Ref.
	Creator string `yaml:"creator"`
}

// FlowStep is one operation in the flow.
//
// Supported ops: create_post, update_post, delete_post, create_answer,
// update_answer, delete_answer, toggle_like, save_post, unsave_post,
// mark_read, delete_notification.
type FlowStep struct {
	// Op is the operation name.
	Op string `yaml:"op"`

	// Actor references the user Ref performing the operation.
	Actor string `yaml:"actor"`

	// Args are operation arguments. Values are either literals or
	// references to earlier Refs (resolved by name when the argument
	// expects an entity).
	Args map[string]string `yaml:"args,omitempty"`

	// As registers the created entity's id under this Ref.
	As string `yaml:"as,omitempty"`

	// Expect is the expected outcome: empty or "ok" for success,
	// otherwise an error kind (NOT_FOUND, FORBIDDEN, VALIDATION_FAILED).
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates final state.
//
// Types:
//   - notification_count: receiver's inbox has exactly Count entries
//   - notification_exists: receiver's inbox contains a matching entry
//   - likes: the post's like set equals Users, in like order
//   - absent: the referenced entity no longer resolves (Kind selects
//     the collection: post or answer)
//   - mirrors: every post's answer projection matches its answer rows
type Assertion struct {
	Type string `yaml:"type"`

	// Receiver references a user Ref (notification assertions).
	Receiver string `yaml:"receiver,omitempty"`

	// Count is the expected inbox size (notification_count).
	Count int `yaml:"count,omitempty"`

	// NotifType, Sender, Entity and Read constrain notification_exists.
	NotifType string `yaml:"notif_type,omitempty"`
	Sender    string `yaml:"sender,omitempty"`
	Entity    string `yaml:"entity,omitempty"`
	Read      *bool  `yaml:"read,omitempty"`

	// Post and Users are used by the likes assertion.
	Post  string   `yaml:"post,omitempty"`
	Users []string `yaml:"users,omitempty"`

	// Kind and Ref are used by the absent assertion.
	Kind string `yaml:"kind,omitempty"`
	Ref  string `yaml:"ref,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if len(sc.Users) == 0 {
		return nil, fmt.Errorf("scenario %q: at least one user is required", sc.Name)
	}
	for i, u := range sc.Users {
		if u.Ref == "" {
			return nil, fmt.Errorf("scenario %q: users[%d] missing ref", sc.Name, i)
		}
	}
	for i, step := range sc.Flow {
		if step.Op == "" {
			return nil, fmt.Errorf("scenario %q: flow[%d] missing op", sc.Name, i)
		}
		if step.Actor == "" {
			return nil, fmt.Errorf("scenario %q: flow[%d] missing actor", sc.Name, i)
		}
	}

	return &sc, nil
}
