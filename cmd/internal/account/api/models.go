package accountapi

import "time"

type registerRequest struct {
	Handle      string  `json:"handle"`
	DisplayName *string `json:"display_name"`
	Password    string  `json:"password"`
}

type credentialsRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID          string    `json:"id"`
	Handle      string    `json:"handle"`
	DisplayName *string   `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type accountEnvelope struct {
	Account accountResponse `json:"account"`
}
