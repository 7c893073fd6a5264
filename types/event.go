package types

// Agent identifies the agent that issued an action-group function call.
type Agent struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Alias   string `json:"alias"`
	Version string `json:"version"`
}

// Parameter is a single name/value pair passed by the agent.
type Parameter struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Event is the inbound function-call envelope.
type Event struct {
	MessageVersion          string            `json:"messageVersion"`
	Agent                   *Agent            `json:"agent"`
	InputText               string            `json:"inputText,omitempty"`
	SessionID               string            `json:"sessionId,omitempty"`
	ActionGroup             string            `json:"actionGroup"`
	Function                string            `json:"function"`
	Parameters              []Parameter       `json:"parameters"`
	SessionAttributes       map[string]string `json:"sessionAttributes,omitempty"`
	PromptSessionAttributes map[string]string `json:"promptSessionAttributes,omitempty"`
}

// TextBody is the plain text payload of a function response.
type TextBody struct {
	Body string `json:"body"`
}

// ResponseBody wraps the response payload keyed by content type.
type ResponseBody struct {
	Text TextBody `json:"TEXT"`
}

// FunctionResponse is the result of the invoked function.
type FunctionResponse struct {
	ResponseState string       `json:"responseState,omitempty"`
	ResponseBody  ResponseBody `json:"responseBody"`
}

// ActionResponse echoes the invocation identifiers alongside the result.
type ActionResponse struct {
	ActionGroup      string           `json:"actionGroup"`
	Function         string           `json:"function"`
	FunctionResponse FunctionResponse `json:"functionResponse"`
}

// Response is the outbound envelope. It has the same shape on success and failure.
type Response struct {
	MessageVersion          string            `json:"messageVersion"`
	Response                ActionResponse    `json:"response"`
	SessionAttributes       map[string]string `json:"sessionAttributes,omitempty"`
	PromptSessionAttributes map[string]string `json:"promptSessionAttributes,omitempty"`
}
