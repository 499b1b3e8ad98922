package getautomationstatus

type Input struct {
	ApplicationID string `json:"applicationId"`
}

// Output is flat so gateways in the process can branch on it directly.
// AutomationFound is false when automation never ran for the application.
type Output struct {
	AutomationFound     bool       `json:"automationFound"`
	AutomationFinished  bool       `json:"automationFinished"`
	AutomationJobID     string     `json:"automationJobId,omitempty"`
	AutomationStatus    string     `json:"automationStatus,omitempty"`
	AutomationStage     string     `json:"automationStage,omitempty"`
	AutomationAttempts  int        `json:"automationAttempts,omitempty"`
	AutomationLastError string     `json:"automationLastError,omitempty"`
	AutomationUpdatedAt string     `json:"automationUpdatedAt,omitempty"`
	AutomationLogs      []LogEntry `json:"automationLogs"`
}

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

const inputSchema = `{
  "type": "object",
  "required": ["applicationId"],
  "properties": {
    "applicationId": {
      "oneOf": [
        {"type": "string", "minLength": 1},
        {"type": "integer", "minimum": 1}
      ]
    }
  }
}`
