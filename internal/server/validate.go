package server

import "github.com/go-playground/validator/v10"

var validate = validator.New()

func ValidateRequest(req any) error {
	return validate.Struct(req)
}

type SendMessageRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type SwitchPersonaRequest struct {
	Persona string `json:"persona" validate:"required"`
}

type SendMessageResponse struct {
	Reply string `json:"reply"`
}

type SwitchPersonaResponse struct {
	Changed bool   `json:"changed"`
	Persona string `json:"persona"`
}

type PersonaView struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}
