package portal

import (
	"maps"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/goliatone/go-student-portal/middleware/csrf"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns the data every page can use:
//
//	{% if is_authenticated %}
//	{{ current_user.FullName }}
//	<input type="hidden" name="{{ csrf_field }}" value="{{ csrf_token }}">
//	{% if flash %}{{ flash.Message }}{% endif %}
func TemplateHelpers(c *fiber.Ctx, ac *AuthContext) fiber.Map {
	helpers := fiber.Map{
		"is_authenticated": false,
		TemplateUserKey:    nil,
		"current_path":     c.Path(),
	}

	if ac != nil && ac.IsAuthenticated() {
		helpers["is_authenticated"] = true
		if claims, ok := ac.Identity(); ok {
			helpers[TemplateUserKey] = fiber.Map{
				"SubjectID": claims.SubjectID,
				"FirstName": claims.FirstName,
				"LastName":  claims.LastName,
				"FullName":  claims.FullName(),
			}
		}
	}

	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		helpers["request_id"] = id
	}

	if f, ok := ConsumeFlash(c); ok {
		helpers["flash"] = f
	}

	maps.Copy(helpers, csrf.TemplateData(c))

	return helpers
}

// MergeTemplateData lays data over the helpers, data wins
func MergeTemplateData(c *fiber.Ctx, ac *AuthContext, data fiber.Map) fiber.Map {
	out := TemplateHelpers(c, ac)
	maps.Copy(out, data)
	return out
}
