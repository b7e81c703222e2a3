package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/noah-isme/school-tests-api/internal/middleware"
	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/validation"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
)

var errMalformedBody = appErrors.Clone(appErrors.ErrValidation, "Malformed request body")

func principalFromContext(c *gin.Context) *models.Student {
	return middleware.Principal(c)
}

// bindPayload decodes a JSON or urlencoded body into a loose payload. Form
// keys ending in "[]" or given more than once become lists.
func bindPayload(c *gin.Context) (validation.Payload, error) {
	payload := validation.Payload{}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return payload, nil
	}

	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		if c.ContentType() == binding.MIMEMultipartPOSTForm {
			if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
				return nil, errMalformedBody
			}
		} else if err := c.Request.ParseForm(); err != nil {
			return nil, errMalformedBody
		}
		for key, values := range c.Request.PostForm {
			name := strings.TrimSuffix(key, "[]")
			if name != key || len(values) > 1 {
				list := make([]interface{}, len(values))
				for i, v := range values {
					list[i] = v
				}
				payload[name] = list
				continue
			}
			payload[name] = values[0]
		}
		return payload, nil
	default:
		decoder := json.NewDecoder(c.Request.Body)
		if err := decoder.Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				return validation.Payload{}, nil
			}
			return nil, errMalformedBody
		}
		if payload == nil {
			payload = validation.Payload{}
		}
		return payload, nil
	}
}

func stringField(p validation.Payload, key string) string {
	value, _ := p[key].(string)
	return value
}

func setSessionCookie(c *gin.Context, cfg CookieConfig, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, value, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
}

func clearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, "", -1, "/", "", cfg.Secure, true)
}
