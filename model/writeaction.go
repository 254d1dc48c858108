package model

type HttpMethod string

const HTTP_METHOD_POST HttpMethod = "POST"
const HTTP_METHOD_PUT HttpMethod = "PUT"

// WriteAction is an operator configured outbound call that writes to the ERP.
// RequestBodyTemplate carries {{variableName}} placeholders resolved against
// the conversation's variables at execution time.
type WriteAction struct {
	Id                  string     `json:"id"`
	Name                string     `json:"name"`
	HttpMethod          HttpMethod `json:"httpMethod"`
	Endpoint            string     `json:"endpoint"`
	RequestBodyTemplate string     `json:"requestBodyTemplate"`
	IsActive            bool       `json:"isActive"`
}
