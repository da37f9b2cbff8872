package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/camslew/internal/core/domain"
)

// ListCamerasHandler returns cameras from the backend, paginated.
func ListCamerasHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cameras, err := deps.Cameras.List(c.UserContext())
		if err != nil {
			return handleError(c, err)
		}

		pg, start, end := paginate(c, len(cameras), 100, 500)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: cameras[start:end], Pagination: pg})
	}
}

// GetCameraHandler returns a single camera.
func GetCameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cam, err := deps.Cameras.GetByID(c.UserContext(), domain.CameraID(c.Params("id")))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(cam)
	}
}

// CreateCameraHandler validates and saves a new camera. Any id in the body
// is ignored; the backend assigns one.
func CreateCameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cam domain.Camera
		if err := c.BodyParser(&cam); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		cam.ID = ""

		if err := deps.Cameras.Create(c.UserContext(), &cam); err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cam)
	}
}

// ReplaceCameraHandler sends a complete camera record. The path id wins
// over any id in the body.
func ReplaceCameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cam domain.Camera
		if err := c.BodyParser(&cam); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		cam.ID = domain.CameraID(c.Params("id"))

		if err := deps.Cameras.Replace(c.UserContext(), &cam); err != nil {
			return handleError(c, err)
		}
		return c.JSON(cam)
	}
}

// PatchCameraHandler sends only the fields present in the body.
func PatchCameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch domain.CameraPatch
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		patch.ID = domain.CameraID(c.Params("id"))
		if patch.IsEmpty() {
			return errBadRequest(c, "no fields to update")
		}

		if err := deps.Cameras.Update(c.UserContext(), patch); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CameraSlewsHandler lists recent committed slews for a camera.
func CameraSlewsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		records, err := deps.Slew.History(c.UserContext(), domain.CameraID(c.Params("id")), limit)
		if err != nil {
			return handleError(c, err)
		}
		if records == nil {
			records = []domain.SlewRecord{}
		}
		return c.JSON(records)
	}
}

// Legacy routes mirror the camera-storage backend's own paths so existing
// clients can point at this service unchanged.

func legacyListCamerasHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cameras, err := deps.Cameras.List(c.UserContext())
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(cameras)
	}
}

func legacySaveCameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cam domain.Camera
		if err := c.BodyParser(&cam); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		cam.ID = ""
		if err := deps.Cameras.Create(c.UserContext(), &cam); err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

func legacyUpdateCameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch domain.CameraPatch
		if err := c.BodyParser(&patch); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Cameras.Update(c.UserContext(), patch); err != nil {
			return handleError(c, err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
