package startautomation

type Input struct {
	ApplicationID string `json:"applicationId"`
	ServiceType   string `json:"serviceType,omitempty"`
	ActorID       string `json:"actorId,omitempty"`
}

type Output struct {
	AutomationJobID    string `json:"automationJobId"`
	AutomationStatus   string `json:"automationStatus"`
	AutomationStage    string `json:"automationStage"`
	AutomationAttempts int    `json:"automationAttempts"`
	OrderID            string `json:"orderId"`
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
    },
    "serviceType": {"type": "string"},
    "actorId": {"type": "string"}
  }
}`
