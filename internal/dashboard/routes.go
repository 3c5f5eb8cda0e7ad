package dashboard

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/wadash/internal/confirm"
	"github.com/zulandar/wadash/internal/directory"
	"github.com/zulandar/wadash/internal/models"
	"github.com/zulandar/wadash/internal/schedule"
)

// activityLimit is the number of entries shown on the activity page.
const activityLimit = 100

// handlers owns the single operator session served by this process.
type handlers struct {
	deps     Deps
	view     *directory.View
	composer *schedule.Composer
}

func newHandlers(deps Deps) *handlers {
	return &handlers{
		deps:     deps,
		view:     directory.New(deps.Gateway, deps.Notifier),
		composer: schedule.NewComposer(deps.Gateway, deps.Notifier),
	}
}

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, h *handlers) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/instances") })
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	router.GET("/instances", h.instanceList)
	router.GET("/instances/new", h.instanceNew)
	router.GET("/instances/cancel", h.instanceCancel)
	router.POST("/instances", h.instanceCreate)
	router.POST("/instances/:name/connect", h.instanceConnect)
	router.POST("/instances/:name/logout", h.instanceLogout)
	router.GET("/instances/:name/delete", h.instanceDeleteConfirm)
	router.POST("/instances/:name/delete", h.instanceDelete)

	router.GET("/schedules", h.scheduleList)
	router.GET("/schedules/new", h.scheduleNew)
	router.GET("/schedules/cancel", h.scheduleCancel)
	router.POST("/schedules", h.scheduleCreate)
	router.GET("/schedules/:id/delete", h.scheduleDeleteConfirm)
	router.POST("/schedules/:id/delete", h.scheduleDelete)

	router.GET("/activity", h.activity)
	router.GET("/api/events", handleSSE(h.deps.Feed))
}

// render executes the layout for page, adding pending flash notices.
func (h *handlers) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["page"] = page
	data["flash"] = h.deps.Feed.Drain()
	c.HTML(status, "layout.html", data)
}

// formConfirmer approves only when the submitted form carries confirm=yes.
func formConfirmer(c *gin.Context) confirm.Confirmer {
	return confirm.Func(func(context.Context, string) (bool, error) {
		return c.PostForm("confirm") == "yes", nil
	})
}

// --- Instances ---

func (h *handlers) instancePage(c *gin.Context, status int, extra gin.H) {
	data := gin.H{
		"state": h.view.State(),
		"cards": h.view.Cards(),
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "instances", data)
}

func (h *handlers) instanceList(c *gin.Context) {
	_ = h.view.Sync(c.Request.Context())
	h.instancePage(c, http.StatusOK, nil)
}

func (h *handlers) instanceNew(c *gin.Context) {
	h.view.OpenCreate()
	_ = h.view.Sync(c.Request.Context())
	h.instancePage(c, http.StatusOK, nil)
}

func (h *handlers) instanceCancel(c *gin.Context) {
	h.view.CancelCreate()
	c.Redirect(http.StatusSeeOther, "/instances")
}

func (h *handlers) instanceCreate(c *gin.Context) {
	h.view.OpenCreate()
	err := h.view.Create(c.Request.Context(), c.PostForm("instanceName"))
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/instances")
	case errors.Is(err, directory.ErrBlankName):
		h.instancePage(c, http.StatusUnprocessableEntity, gin.H{"createError": "Instance name is required"})
	default:
		h.instancePage(c, http.StatusBadGateway, nil)
	}
}

func (h *handlers) instanceConnect(c *gin.Context) {
	_, _ = h.view.Connect(c.Request.Context(), c.Param("name"))
	c.Redirect(http.StatusSeeOther, "/instances")
}

func (h *handlers) instanceLogout(c *gin.Context) {
	_ = h.view.Logout(c.Request.Context(), c.Param("name"))
	c.Redirect(http.StatusSeeOther, "/instances")
}

func (h *handlers) instanceDeleteConfirm(c *gin.Context) {
	name := c.Param("name")
	h.render(c, http.StatusOK, "confirm", gin.H{
		"question": directory.QuestionDelete,
		"subject":  name,
		"action":   "/instances/" + url.PathEscape(name) + "/delete",
		"back":     "/instances",
	})
}

func (h *handlers) instanceDelete(c *gin.Context) {
	err := h.view.Delete(c.Request.Context(), c.Param("name"), formConfirmer(c))
	if errors.Is(err, confirm.ErrDeclined) {
		h.instanceDeleteConfirm(c)
		return
	}
	c.Redirect(http.StatusSeeOther, "/instances")
}

// --- Schedules ---

func (h *handlers) schedulePage(c *gin.Context, status int, extra gin.H) {
	data := gin.H{
		"state":    h.composer.State(),
		"rows":     h.composer.Rows(),
		"types":    []models.MessageType{models.TypeText, models.TypeImage, models.TypeDocument},
		"repeats":  []models.Repeat{models.RepeatNone, models.RepeatDaily, models.RepeatWeekly, models.RepeatMonthly},
		"fieldErr": map[string]string{},
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "schedules", data)
}

func (h *handlers) scheduleList(c *gin.Context) {
	_ = h.composer.Sync(c.Request.Context())
	h.schedulePage(c, http.StatusOK, nil)
}

func (h *handlers) scheduleNew(c *gin.Context) {
	ctx := c.Request.Context()
	h.composer.OpenModal()
	_ = h.composer.Sync(ctx)
	if name := c.Query("instance"); name != "" && name != h.composer.State().Selected {
		_ = h.composer.SelectInstance(ctx, name)
	}
	h.schedulePage(c, http.StatusOK, nil)
}

func (h *handlers) scheduleCancel(c *gin.Context) {
	h.composer.CloseModal()
	c.Redirect(http.StatusSeeOther, "/schedules")
}

func (h *handlers) scheduleCreate(c *gin.Context) {
	ctx := c.Request.Context()
	h.composer.OpenModal()

	// A chat picked from another instance's list is dropped with the switch.
	switched := false
	if name := c.PostForm("instanceName"); name != h.composer.State().Selected {
		switched = true
		_ = h.composer.SelectInstance(ctx, name)
	}
	h.composer.UpdateDraft(func(d *schedule.Draft) {
		if !switched {
			d.ChatID = c.PostForm("chatId")
		}
		d.Type = models.MessageType(c.DefaultPostForm("type", string(models.TypeText)))
		d.Content = c.PostForm("content")
		d.FileURL = c.PostForm("fileUrl")
		d.FileName = c.PostForm("fileName")
		d.ScheduledTime = c.PostForm("scheduledTime")
		d.Repeat = models.Repeat(c.DefaultPostForm("repeat", string(models.RepeatNone)))
	})

	err := h.composer.Submit(ctx)
	var ve *schedule.ValidationError
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/schedules")
	case errors.As(err, &ve):
		h.schedulePage(c, http.StatusUnprocessableEntity, gin.H{"fieldErr": ve.Fields})
	default:
		h.schedulePage(c, http.StatusBadGateway, nil)
	}
}

func (h *handlers) scheduleDeleteConfirm(c *gin.Context) {
	id := c.Param("id")
	h.render(c, http.StatusOK, "confirm", gin.H{
		"question": schedule.QuestionDelete,
		"subject":  id,
		"action":   "/schedules/" + url.PathEscape(id) + "/delete",
		"back":     "/schedules",
	})
}

func (h *handlers) scheduleDelete(c *gin.Context) {
	err := h.composer.Delete(c.Request.Context(), c.Param("id"), formConfirmer(c))
	if errors.Is(err, confirm.ErrDeclined) {
		h.scheduleDeleteConfirm(c)
		return
	}
	c.Redirect(http.StatusSeeOther, "/schedules")
}

// --- Activity ---

// activityRow is one line on the activity page.
type activityRow struct {
	Level   string
	Message string
	Action  string
	Target  string
	At      time.Time
}

func (h *handlers) activity(c *gin.Context) {
	var rows []activityRow
	source := "memory"
	if h.deps.Journal != nil {
		source = "journal"
		entries, err := h.deps.Journal.Recent(c.Request.Context(), activityLimit)
		if err != nil {
			c.String(http.StatusInternalServerError, "activity: %v", err)
			return
		}
		for _, e := range entries {
			rows = append(rows, activityRow{Level: e.Level, Message: e.Message, Action: e.Action, Target: e.Target, At: e.CreatedAt})
		}
	} else {
		for _, n := range h.deps.Feed.Recent(activityLimit) {
			rows = append(rows, activityRow{Level: string(n.Level), Message: n.Message, Action: n.Action, Target: n.Target, At: n.At})
		}
	}
	h.render(c, http.StatusOK, "activity", gin.H{"rows": rows, "source": source})
}
