package controller

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

// (GET /api/parts/search).
func (c *Controller) SearchParts(ctx echo.Context) error {
	return c.proxy(ctx, "parts_search", http.MethodGet, "/parts/search", search)
}

// (GET /api/parts/{id}).
func (c *Controller) GetPart(ctx echo.Context, id string) error {
	return c.proxy(ctx, "parts_get", http.MethodGet, "/parts/"+url.PathEscape(id), passthrough)
}

// (GET /api/vendors/search).
func (c *Controller) SearchVendors(ctx echo.Context) error {
	return c.proxy(ctx, "vendors_search", http.MethodGet, "/vendors/search", search)
}

// (GET /api/vendors/{id}).
func (c *Controller) GetVendor(ctx echo.Context, id string) error {
	return c.proxy(ctx, "vendors_get", http.MethodGet, "/vendors/"+url.PathEscape(id), passthrough)
}

func (c *Controller) ListUsers(ctx echo.Context) error {
	return c.proxy(ctx, "admin_users_list", http.MethodGet, "/admin/users", search)
}

func (c *Controller) CreateUser(ctx echo.Context) error {
	return c.proxy(ctx, "admin_users_create", http.MethodPost, "/admin/users", mutation)
}

func (c *Controller) UpdateUser(ctx echo.Context, id string) error {
	return c.proxy(ctx, "admin_users_update", http.MethodPatch, "/admin/users/"+url.PathEscape(id), mutation)
}

func (c *Controller) DeleteUser(ctx echo.Context, id string) error {
	return c.proxy(ctx, "admin_users_delete", http.MethodDelete, "/admin/users/"+url.PathEscape(id), mutation)
}

func (c *Controller) ListProducts(ctx echo.Context) error {
	return c.proxy(ctx, "admin_products_list", http.MethodGet, "/admin/products", search)
}

func (c *Controller) CreateProduct(ctx echo.Context) error {
	return c.proxy(ctx, "admin_products_create", http.MethodPost, "/admin/products", mutation)
}

func (c *Controller) UpdateProduct(ctx echo.Context, id string) error {
	return c.proxy(ctx, "admin_products_update", http.MethodPatch, "/admin/products/"+url.PathEscape(id), mutation)
}

func (c *Controller) DeleteProduct(ctx echo.Context, id string) error {
	return c.proxy(ctx, "admin_products_delete", http.MethodDelete, "/admin/products/"+url.PathEscape(id), mutation)
}

func (c *Controller) GetPreferences(ctx echo.Context) error {
	return c.proxy(ctx, "preferences_get", http.MethodGet, "/preferences", passthrough)
}

func (c *Controller) UpdatePreferences(ctx echo.Context) error {
	return c.proxy(ctx, "preferences_update", http.MethodPut, "/preferences", mutation)
}
