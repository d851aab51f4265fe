package handlers

import (
	"github.com/addahq/adda-backend/services"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var (
	mediaService   *services.MediaService
	messageService *services.MessageService
)

// Setup hands the shared services to the package-level handlers. Called once
// from main before routes are registered.
func Setup(media *services.MediaService, messages *services.MessageService) {
	mediaService = media
	messageService = messages
}
