package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/autopost/internal/api/middleware"
	"github.com/maheshrc27/autopost/internal/models"
)

func GetOperator(c *fiber.Ctx) string {
	operator, _ := c.Locals(middleware.OperatorKey).(string)
	return operator
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func parsePlatforms(names []string) ([]models.Platform, error) {
	platforms := make([]models.Platform, 0, len(names))
	for _, name := range names {
		p, err := models.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}
