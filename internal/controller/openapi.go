package controller

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi/openapi.yaml
var openAPISpec []byte

// GetSwagger parses the embedded OpenAPI document used for request validation.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = swagger.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return swagger, nil
}

// ServerInterface lists the /api operations of openapi/openapi.yaml.
type ServerInterface interface {
	// (POST /auth/login)
	Login(ctx echo.Context) error
	// (POST /auth/logout)
	Logout(ctx echo.Context) error
	// (POST /auth/refresh)
	Refresh(ctx echo.Context) error
	// (GET /auth/session)
	GetSession(ctx echo.Context) error
	// (POST /auth/change-password)
	ChangePassword(ctx echo.Context) error

	// (GET /parts/search)
	SearchParts(ctx echo.Context) error
	// (GET /parts/{id})
	GetPart(ctx echo.Context, id string) error
	// (GET /vendors/search)
	SearchVendors(ctx echo.Context) error
	// (GET /vendors/{id})
	GetVendor(ctx echo.Context, id string) error

	// (GET /admin/users)
	ListUsers(ctx echo.Context) error
	// (POST /admin/users)
	CreateUser(ctx echo.Context) error
	// (PATCH /admin/users/{id})
	UpdateUser(ctx echo.Context, id string) error
	// (DELETE /admin/users/{id})
	DeleteUser(ctx echo.Context, id string) error

	// (GET /admin/products)
	ListProducts(ctx echo.Context) error
	// (POST /admin/products)
	CreateProduct(ctx echo.Context) error
	// (PATCH /admin/products/{id})
	UpdateProduct(ctx echo.Context, id string) error
	// (DELETE /admin/products/{id})
	DeleteProduct(ctx echo.Context, id string) error

	// (GET /preferences)
	GetPreferences(ctx echo.Context) error
	// (PUT /preferences)
	UpdatePreferences(ctx echo.Context) error
}

type idHandler func(ctx echo.Context, id string) error

// withID binds the {id} path parameter before calling h.
func withID(h idHandler) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var id string

		err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
		}

		return h(ctx, id)
	}
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	router.POST(baseURL+"/auth/login", si.Login)
	router.POST(baseURL+"/auth/logout", si.Logout)
	router.POST(baseURL+"/auth/refresh", si.Refresh)
	router.GET(baseURL+"/auth/session", si.GetSession)
	router.POST(baseURL+"/auth/change-password", si.ChangePassword)

	router.GET(baseURL+"/parts/search", si.SearchParts)
	router.GET(baseURL+"/parts/:id", withID(si.GetPart))
	router.GET(baseURL+"/vendors/search", si.SearchVendors)
	router.GET(baseURL+"/vendors/:id", withID(si.GetVendor))

	router.GET(baseURL+"/admin/users", si.ListUsers)
	router.POST(baseURL+"/admin/users", si.CreateUser)
	router.PATCH(baseURL+"/admin/users/:id", withID(si.UpdateUser))
	router.DELETE(baseURL+"/admin/users/:id", withID(si.DeleteUser))

	router.GET(baseURL+"/admin/products", si.ListProducts)
	router.POST(baseURL+"/admin/products", si.CreateProduct)
	router.PATCH(baseURL+"/admin/products/:id", withID(si.UpdateProduct))
	router.DELETE(baseURL+"/admin/products/:id", withID(si.DeleteProduct))

	router.GET(baseURL+"/preferences", si.GetPreferences)
	router.PUT(baseURL+"/preferences", si.UpdatePreferences)
}
