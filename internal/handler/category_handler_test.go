package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/service"
	"github.com/fincontrol/fincontrol-backend/internal/testutil"
	"github.com/fincontrol/fincontrol-backend/internal/websocket"
	"github.com/labstack/echo/v4"
)

func newCategoryHandlerFixture() (*testutil.MockCategoryRepository, *CategoryHandler) {
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryService := service.NewCategoryService(categoryRepo)
	return categoryRepo, NewCategoryHandler(categoryService, &websocket.NoOpPublisher{})
}

func newJSONContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateCategory_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	_, handler := newCategoryHandlerFixture()
	userID := testutil.NewMockUserRepository().AddUser(&domain.User{Username: "alice"}).ID

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", `{"name":"Food"}`)
	setupAuthContext(c, userID)

	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var category domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &category); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if category.Name != "Food" || category.IsIncome {
		t.Errorf("Unexpected category %+v", category)
	}
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	categoryRepo, handler := newCategoryHandlerFixture()
	userID := testutil.NewMockUserRepository().AddUser(&domain.User{Username: "alice"}).ID

	categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Food"})

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/categories", `{"name":"food"}`)
	setupAuthContext(c, userID)

	if err := handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestDeleteCategory_InUse(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	categoryRepo, handler := newCategoryHandlerFixture()
	userID := testutil.NewMockUserRepository().AddUser(&domain.User{Username: "alice"}).ID

	category := categoryRepo.AddCategory(&domain.Category{UserID: userID, Name: "Food"})
	categoryRepo.InUse[category.ID] = true

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/categories/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, userID)

	if err := handler.DeleteCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}
