package keitarodomain

import "fmt"

// APIError representa uma resposta não-2xx da API da Keitaro
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("keitaro: %s respondeu com status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("keitaro: %s respondeu com status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// IsUnauthorized indica que a chave de API foi recusada
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
