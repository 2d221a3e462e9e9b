package handler

import "github.com/labstack/echo/v4"

// Response is the envelope every JSON endpoint renders.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// Fail renders an error envelope. code is a stable machine-readable label,
// message is meant for humans.
func Fail(c echo.Context, status int, code, message string, details map[string]string) error {
	return c.JSON(status, Response{
		Success: false,
		Message: message,
		Error:   code,
		Details: details,
	})
}
