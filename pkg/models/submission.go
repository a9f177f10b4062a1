package models

// TaskSubmission is the wire form of one task inside a workflow submission.
// Hooks are nil-able so absent hooks serialize as null rather than "".
type TaskSubmission struct {
	Name       string      `json:"name"       validate:"required"`
	Action     Action      `json:"action"     validate:"required"`
	Parameters []Parameter `json:"parameters"`
	DependsOn  []string    `json:"depends_on"`
	Priority   Priority    `json:"priority"   validate:"required"`
	PreHook    *string     `json:"pre_hook"`
	PostHook   *string     `json:"post_hook"`
}

// WorkflowSubmission is the payload sent to the create and update endpoints.
type WorkflowSubmission struct {
	Name        string           `json:"name"        validate:"required,max=200"`
	Description string           `json:"description" validate:"max=5000"`
	Tags        []string         `json:"tags"`
	Tasks       []TaskSubmission `json:"tasks"       validate:"dive"`
	Schedule    string           `json:"schedule,omitempty"`
}
