package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/mailer"
)

// ContactSender delivers contact form messages.
type ContactSender interface {
	SendContact(form mailer.ContactForm) error
}

type ContactHandler struct {
	sender ContactSender
	log    logrus.FieldLogger
}

func NewContactHandler(sender ContactSender, log logrus.FieldLogger) *ContactHandler {
	return &ContactHandler{sender: sender, log: log.WithField("handler", "contact")}
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(c *gin.Context) {
	var form mailer.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	err := h.sender.SendContact(form)
	if errors.Is(err, mailer.ErrMissingFields) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Name, email and message are required."})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("contact mail failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to send message. Please try again later.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent successfully!"})
}
