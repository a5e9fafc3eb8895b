package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/raiplaysound-rss/app/database"
	"github.com/lysyi3m/raiplaysound-rss/app/feed"
	"github.com/lysyi3m/raiplaysound-rss/app/sources"
	"github.com/lysyi3m/raiplaysound-rss/app/tasks"
)

func NewHandler(sourceCache *sources.Cache, pageRepo database.PageRepository,
	scheduler tasks.TaskSchedulerInterface, folder string) *Handler {
	return &Handler{
		sourceCache: sourceCache,
		pageRepo:    pageRepo,
		parser:      feed.NewParser(),
		scheduler:   scheduler,
		folder:      folder,
	}
}

// feedPath maps a feed name to its file, rejecting names that would leave the
// output folder.
func (h *Handler) feedPath(name string) (string, bool) {
	name = strings.TrimSuffix(name, ".xml")
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return filepath.Join(h.folder, name+".xml"), true
}

func (h *Handler) GetFeed(c *gin.Context) {
	path, ok := h.feedPath(c.Param("name"))
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Feed file error", "path", path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Name", strings.TrimSuffix(filepath.Base(path), ".xml"))
	c.Header("X-Last-Updated", info.ModTime().UTC().Format(time.RFC3339))

	c.File(path)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if pageCount, err := h.pageRepo.GetPageCount(); err == nil {
		health["pages"] = pageCount
	} else {
		slog.Error("Database error", "operation", "count_pages", "error", err)
		health["status"] = "degraded"
	}

	health["loaded_sources"] = h.sourceCache.GetSourceCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"sources":         h.sourceCache.GetSourceCount(),
		"enabled_sources": len(h.sourceCache.GetEnabledSources()),
	}

	if counts, err := h.pageRepo.GetStatusCounts(); err == nil {
		stats["pages"] = counts
	} else {
		slog.Error("Database error", "operation", "status_counts", "error", err)
	}

	if files, err := filepath.Glob(filepath.Join(h.folder, "*.xml")); err == nil {
		stats["feed_files"] = len(files)
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListPages(c *gin.Context) {
	pages, err := h.pageRepo.ListPages()
	if err != nil {
		slog.Error("Database error", "operation", "list_pages", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result := make([]map[string]interface{}, 0, len(pages))
	for _, page := range pages {
		result = append(result, h.pageInfo(page))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"pages": result,
		"total": len(result),
	})
}

func (h *Handler) APIGetPage(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("name"), ".xml")
	path, ok := h.feedPath(name)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed name"})
		return
	}

	page, err := h.pageRepo.GetPage(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_page", "page", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	data, readErr := os.ReadFile(path)
	if page == nil && readErr != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
		return
	}

	details := map[string]interface{}{"name": name}
	if page != nil {
		details = h.pageInfo(*page)
	}

	if readErr == nil {
		summary, err := h.parser.Run(data)
		if err != nil {
			slog.Warn("Generated feed could not be parsed", "path", path, "error", err)
			details["feed"] = gin.H{"error": err.Error()}
		} else {
			details["feed"] = gin.H{
				"title":       summary.Title,
				"link":        summary.Link,
				"language":    summary.Language,
				"author":      summary.Author,
				"image":       summary.ImageURL,
				"categories":  summary.Categories,
				"item_count":  summary.ItemCount,
				"latest_item": summary.LatestItem,
			}
		}
	}

	c.JSON(http.StatusOK, details)
}

// APIRefreshPage reloads a source definition from disk and queues its
// conversion.
func (h *Handler) APIRefreshPage(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	if _, err := h.sourceCache.GetSource(name); err != nil {
		if source, ok := h.sourceCache.GetSourceByFeed(name); ok {
			name = source.Name
		} else {
			c.JSON(http.StatusNotFound, gin.H{"error": "Source not found"})
			return
		}
	}

	source, err := h.sourceCache.LoadSource(name)
	if err != nil {
		slog.Error("Error reloading source", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload source",
			"details": err.Error(),
		})
		return
	}

	if !source.Settings.Enabled {
		c.JSON(http.StatusConflict, gin.H{"error": "Source is disabled"})
		return
	}

	task, err := h.scheduler.EnqueueSource(source)
	if err != nil {
		slog.Warn("Error enqueueing process task", "source", name, "error", err)
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Failed to enqueue process task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Source reloaded and task enqueued successfully",
		"source": gin.H{
			"name": source.Name,
			"url":  source.URL,
		},
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}

func (h *Handler) pageInfo(page database.Page) map[string]interface{} {
	info := map[string]interface{}{
		"name":              page.Name,
		"url":               page.URL,
		"title":             page.Title,
		"page_type":         page.PageType,
		"item_count":        page.ItemCount,
		"status":            page.Status,
		"last_processed_at": page.LastProcessedAt,
		"feed_updated_at":   page.FeedUpdatedAt,
	}
	if page.Error != "" {
		info["error"] = page.Error
	}
	if source, ok := h.sourceCache.GetSourceByFeed(page.Name); ok {
		info["source"] = source.Name
		info["refresh_interval"] = source.Settings.GetRefreshInterval().String()
	}
	return info
}
