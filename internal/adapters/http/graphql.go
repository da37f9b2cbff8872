package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/usecases"
	"github.com/samirrijal/camslew/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	cameraType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Camera",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"cameraName": &graphql.Field{Type: graphql.String},
			"cameraType": &graphql.Field{Type: graphql.String},
			"latitude":   &graphql.Field{Type: graphql.String},
			"longitude":  &graphql.Field{Type: graphql.String},
			"azimuth":    &graphql.Field{Type: graphql.String},
		},
	})

	nearestType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearestResult",
		Fields: graphql.Fields{
			"point":           &graphql.Field{Type: geoPointType},
			"index":           &graphql.Field{Type: graphql.Int},
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"azimuth":         &graphql.Field{Type: graphql.Float},
			"azimuth_text": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, _ := p.Source.(*domain.NearestResult)
					if res == nil {
						return nil, nil
					}
					return geospatial.FormatAzimuth(res.Azimuth), nil
				},
			},
			"computed_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SlewSession",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"camera":    &graphql.Field{Type: cameraType},
			"reference": &graphql.Field{Type: geoPointType},
			"candidates": &graphql.Field{
				Type: graphql.NewList(geoPointType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sess, _ := p.Source.(*domain.SlewSession)
					if sess == nil {
						return nil, nil
					}
					return sess.Candidates.Points(), nil
				},
			},
			"result":     &graphql.Field{Type: nearestType},
			"created_at": &graphql.Field{Type: graphql.DateTime},
			"updated_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	slewRecordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SlewRecord",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"session_id":       &graphql.Field{Type: graphql.String},
			"camera_id":        &graphql.Field{Type: graphql.String},
			"camera_name":      &graphql.Field{Type: graphql.String},
			"reference":        &graphql.Field{Type: geoPointType},
			"target":           &graphql.Field{Type: geoPointType},
			"previous_azimuth": &graphql.Field{Type: graphql.String},
			"azimuth":          &graphql.Field{Type: graphql.String},
			"candidates":       &graphql.Field{Type: graphql.Int},
			"distance_meters":  &graphql.Field{Type: graphql.Float},
			"committed_at":     &graphql.Field{Type: graphql.DateTime},
		},
	})

	pointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"latitude":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"longitude": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cameras": &graphql.Field{
				Type:        graphql.NewList(cameraType),
				Description: "List all cameras",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cameras.List(p.Context)
				},
			},
			"camera": &graphql.Field{
				Type:        cameraType,
				Description: "Get a camera by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Cameras.GetByID(p.Context, domain.CameraID(id))
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Get a slew session by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Slew.GetSession(p.Context, id)
				},
			},
			"slews": &graphql.Field{
				Type:        graphql.NewList(slewRecordType),
				Description: "Recent committed slews for a camera",
				Args: graphql.FieldConfigArgument{
					"camera_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["camera_id"].(string)
					limit := p.Args["limit"].(int)
					return deps.Slew.History(p.Context, domain.CameraID(id), limit)
				},
			},
			"nearest": &graphql.Field{
				Type:        nearestType,
				Description: "Nearest candidate to a reference point and the azimuth towards it",
				Args: graphql.FieldConfigArgument{
					"reference":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(pointInput)},
					"candidates": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(pointInput)))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ref := pointTextArg(p.Args["reference"])
					raw, _ := p.Args["candidates"].([]interface{})
					candidates := make([]usecases.PointText, len(raw))
					for i, c := range raw {
						candidates[i] = pointTextArg(c)
					}
					return deps.Slew.Compute(ref, candidates)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func pointTextArg(v interface{}) usecases.PointText {
	m, _ := v.(map[string]interface{})
	lat, _ := m["latitude"].(string)
	lon, _ := m["longitude"].(string)
	return usecases.PointText{Lat: lat, Lon: lon}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
