package dto

type ClientRequest struct {
	Name string `json:"name" validate:"required"`
}

type ClientResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FindClientResponse struct {
	Found      bool             `json:"found"`
	ClientID   int64            `json:"client_id,omitempty"`
	ClientName string           `json:"client_name,omitempty"`
	Candidates []ClientResponse `json:"candidates,omitempty"`
	Message    string           `json:"message,omitempty"`
}
