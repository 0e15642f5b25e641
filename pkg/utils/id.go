package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 10
)

// GenerateID gera o identificador curto usado para rastrear cada ciclo nos logs
func GenerateID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}
