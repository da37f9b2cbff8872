package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/usecases"
	"github.com/samirrijal/camslew/internal/pkg/geospatial"
)

type selectCameraRequest struct {
	CameraID domain.CameraID `json:"camera_id"`
}

type nearestRequest struct {
	Reference  usecases.PointText   `json:"reference"`
	Candidates []usecases.PointText `json:"candidates"`
}

// nearestResponse carries a computation result. Result is null when there
// were no candidates; Azimuth is the two-decimal text committed to cameras.
type nearestResponse struct {
	Result  *domain.NearestResult `json:"result"`
	Azimuth string                `json:"azimuth,omitempty"`
}

func newNearestResponse(res *domain.NearestResult) nearestResponse {
	if res == nil {
		return nearestResponse{}
	}
	return nearestResponse{Result: res, Azimuth: geospatial.FormatAzimuth(res.Azimuth)}
}

// CreateSessionHandler starts a slew session. An optional camera_id in the
// body selects the camera straight away.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req selectCameraRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		ctx := c.UserContext()
		sess, err := deps.Slew.CreateSession(ctx)
		if err != nil {
			return handleError(c, err)
		}
		if req.CameraID != "" {
			selected, err := deps.Slew.SelectCamera(ctx, sess.ID, req.CameraID)
			if err != nil {
				_ = deps.Slew.DeleteSession(ctx, sess.ID)
				return handleError(c, err)
			}
			sess = selected
		}

		c.Location("/v1/slew/sessions/" + sess.ID)
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// GetSessionHandler returns the current state of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Slew.GetSession(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(sess)
	}
}

// DeleteSessionHandler discards a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Slew.DeleteSession(c.UserContext(), c.Params("id")); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SelectCameraHandler sets the session's camera and reference point.
func SelectCameraHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req selectCameraRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		sess, err := deps.Slew.SelectCamera(c.UserContext(), c.Params("id"), req.CameraID)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(sess)
	}
}

// AddCandidateHandler appends a candidate point given as latitude/longitude text.
func AddCandidateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var pt usecases.PointText
		if err := c.BodyParser(&pt); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		sess, err := deps.Slew.AddCandidatePoint(c.UserContext(), c.Params("id"), pt.Lat, pt.Lon)
		if err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// RemoveCandidateHandler drops the candidate at the given index.
func RemoveCandidateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		index, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}

		sess, err := deps.Slew.RemoveCandidatePoint(c.UserContext(), c.Params("id"), index)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(sess)
	}
}

// ResetSessionHandler clears candidates and result, keeping the camera.
func ResetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Slew.ResetSession(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(sess)
	}
}

// ComputeHandler finds the nearest candidate and the azimuth towards it.
func ComputeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Slew.ComputeNearestAndAzimuth(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(newNearestResponse(res))
	}
}

// CommitHandler writes the computed azimuth to the session's camera.
func CommitHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := deps.Slew.CommitAzimuth(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(rec)
	}
}

// SessionGeoJSONHandler exports the camera, candidates and nearest point as
// a GeoJSON FeatureCollection.
func SessionGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Slew.GetSession(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}

		data, err := geospatial.FeatureCollection(sess.Reference, sess.Candidates, sess.Result).MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// NearestHandler is the stateless form of the workflow: reference and
// candidates in, nearest point and azimuth out.
func NearestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req nearestRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		res, err := deps.Slew.Compute(req.Reference, req.Candidates)
		if err != nil {
			if verrs, ok := domain.AsValidationErrors(err); ok && !isCandidateError(err) {
				return errValidation(c, verrs, "reference.")
			}
			return handleError(c, err)
		}
		return c.JSON(newNearestResponse(res))
	}
}

func isCandidateError(err error) bool {
	_, ok := err.(*usecases.CandidateError)
	return ok
}
