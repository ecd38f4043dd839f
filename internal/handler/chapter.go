package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AbdullaK123/writing-website-backend/internal/middleware"
	"github.com/AbdullaK123/writing-website-backend/internal/model"
	"github.com/AbdullaK123/writing-website-backend/internal/repository"
)

// ChapterHandler serves chapter CRUD under a story.  Mutations require
// the caller to own the parent story.
type ChapterHandler struct {
	Stories  *repository.StoryRepo
	Chapters *repository.ChapterRepo
}

func NewChapterHandler(s *repository.StoryRepo, ch *repository.ChapterRepo) *ChapterHandler {
	return &ChapterHandler{Stories: s, Chapters: ch}
}

type chapterCreateReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
type chapterUpdateReq struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished bool   `json:"is_published"`
}
type chapterResp struct {
	ID          uint64 `json:"id"`
	StoryID     uint64 `json:"story_id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished bool   `json:"is_published"`
}

func toChapterResp(c *model.Chapter) chapterResp {
	return chapterResp{
		ID:          c.ID,
		StoryID:     c.StoryID,
		Title:       c.Title,
		Content:     c.Content,
		IsPublished: c.IsPublished,
	}
}

// Create: add a chapter to a story the caller owns (protected).
func (h *ChapterHandler) Create(c echo.Context) error {
	storyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid story id"})
	}
	var req chapterCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	story, status, errResp := h.ownedStory(ctx, c, storyID)
	if story == nil {
		return c.JSON(status, errResp)
	}

	id, err := h.Chapters.Create(ctx, storyID, title, req.Content)
	if err != nil {
		if err == repository.ErrChapterTitleExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a chapter with that title already exists in this story"})
		}
		c.Logger().Errorf("create chapter: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	return c.JSON(http.StatusCreated, chapterResp{
		ID:      id,
		StoryID: storyID,
		Title:   title,
		Content: req.Content,
	})
}

// ListByStory: a story's chapters in creation order (public).
func (h *ChapterHandler) ListByStory(c echo.Context) error {
	storyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid story id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	story, err := h.Stories.GetByID(ctx, storyID)
	if err != nil {
		c.Logger().Errorf("get story: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	if story == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "story not found"})
	}

	chapters, err := h.Chapters.ListByStory(ctx, storyID)
	if err != nil {
		c.Logger().Errorf("list chapters: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	out := make([]chapterResp, 0, len(chapters))
	for i := range chapters {
		out = append(out, toChapterResp(&chapters[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get: fetch one chapter by id (public).
func (h *ChapterHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chapter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	chapter, err := h.Chapters.GetByID(ctx, id)
	if err != nil {
		c.Logger().Errorf("get chapter: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	if chapter == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "chapter not found"})
	}
	return c.JSON(http.StatusOK, toChapterResp(chapter))
}

// Update: replace a chapter's title, content and publication flag
// (protected, owner only).
func (h *ChapterHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chapter id"})
	}
	var req chapterUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	chapter, err := h.Chapters.GetByID(ctx, id)
	if err != nil {
		c.Logger().Errorf("get chapter: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	if chapter == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "chapter not found"})
	}
	story, status, errResp := h.ownedStory(ctx, c, chapter.StoryID)
	if story == nil {
		return c.JSON(status, errResp)
	}

	if err := h.Chapters.Update(ctx, id, title, req.Content, req.IsPublished); err != nil {
		if err == repository.ErrChapterTitleExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a chapter with that title already exists in this story"})
		}
		c.Logger().Errorf("update chapter: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	return c.JSON(http.StatusOK, chapterResp{
		ID:          id,
		StoryID:     chapter.StoryID,
		Title:       title,
		Content:     req.Content,
		IsPublished: req.IsPublished,
	})
}

// Delete: remove a chapter (protected, owner only).
func (h *ChapterHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chapter id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	chapter, err := h.Chapters.GetByID(ctx, id)
	if err != nil {
		c.Logger().Errorf("get chapter: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	if chapter == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "chapter not found"})
	}
	story, status, errResp := h.ownedStory(ctx, c, chapter.StoryID)
	if story == nil {
		return c.JSON(status, errResp)
	}

	if err := h.Chapters.Delete(ctx, id); err != nil {
		c.Logger().Errorf("delete chapter: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "chapter successfully deleted"})
}

// ownedStory loads a story and checks it belongs to the authenticated
// caller.  On failure it returns a nil story plus the status and body
// the handler should respond with.
func (h *ChapterHandler) ownedStory(ctx context.Context, c echo.Context, storyID uint64) (*repository.StoryRow, int, echo.Map) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"}
	}
	story, err := h.Stories.GetByID(ctx, storyID)
	if err != nil {
		c.Logger().Errorf("get story: %v", err)
		return nil, http.StatusInternalServerError, echo.Map{"error": "a database error occurred"}
	}
	if story == nil {
		return nil, http.StatusNotFound, echo.Map{"error": "story not found"}
	}
	if story.UserID != user.ID {
		return nil, http.StatusForbidden, echo.Map{"error": "you are not authorized to modify this story"}
	}
	return story, 0, nil
}
