package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AbdullaK123/writing-website-backend/internal/middleware"
	"github.com/AbdullaK123/writing-website-backend/internal/repository"
)

// StoryHandler serves the story listing and CRUD endpoints.  It trusts
// the gate's verdict on "who" and enforces ownership itself.
type StoryHandler struct {
	Stories *repository.StoryRepo
}

func NewStoryHandler(s *repository.StoryRepo) *StoryHandler { return &StoryHandler{Stories: s} }

type storyInfoReq struct {
	Name  string `json:"name"`
	Blurb string `json:"blurb"`
}

type authorPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}
type storyResp struct {
	ID     uint64     `json:"id"`
	Name   string     `json:"name"`
	Blurb  string     `json:"blurb"`
	Author authorPart `json:"author"`
}
type storiesPage struct {
	Page      int         `json:"page"`
	PageCount int         `json:"page_count"`
	Stories   []storyResp `json:"stories"`
}

// List: paginated story listing with author tags.
func (h *StoryHandler) List(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "page must be a positive integer"})
	}
	pageSize := 10
	if raw := c.QueryParam("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "page_size must be between 1 and 100"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	rows, total, err := h.Stories.List(ctx, page, pageSize)
	if err != nil {
		c.Logger().Errorf("list stories: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	if len(rows) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no stories yet"})
	}

	out := storiesPage{
		Page:      page,
		PageCount: (total + pageSize - 1) / pageSize,
		Stories:   make([]storyResp, 0, len(rows)),
	}
	for _, s := range rows {
		out.Stories = append(out.Stories, storyResp{
			ID:     s.ID,
			Name:   s.Name,
			Blurb:  s.Blurb,
			Author: authorPart{ID: s.UserID, Username: s.AuthorUsername},
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Get: fetch one story by id.
func (h *StoryHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid story id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	story, err := h.Stories.GetByID(ctx, id)
	if err != nil {
		c.Logger().Errorf("get story: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	if story == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "story not found"})
	}
	return c.JSON(http.StatusOK, storyResp{
		ID:     story.ID,
		Name:   story.Name,
		Blurb:  story.Blurb,
		Author: authorPart{ID: story.UserID, Username: story.AuthorUsername},
	})
}

// Create: add a story owned by the caller (protected).
func (h *StoryHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}

	var req storyInfoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	id, err := h.Stories.Create(ctx, user.ID, name, req.Blurb)
	if err != nil {
		if err == repository.ErrStoryNameExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a story with that name already exists"})
		}
		c.Logger().Errorf("create story: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}

	return c.JSON(http.StatusCreated, storyResp{
		ID:     id,
		Name:   name,
		Blurb:  req.Blurb,
		Author: authorPart{ID: user.ID, Username: user.Username},
	})
}

// Delete: remove a story; only the author may do this (protected).
func (h *StoryHandler) Delete(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid story id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	story, err := h.Stories.GetByID(ctx, id)
	if err != nil {
		c.Logger().Errorf("get story: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	if story == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "story not found"})
	}
	if story.UserID != user.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not authorized to delete this story"})
	}

	if err := h.Stories.Delete(ctx, id); err != nil {
		c.Logger().Errorf("delete story: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "story successfully deleted"})
}
