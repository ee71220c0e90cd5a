package api

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/example/task-tracker/command"
	"github.com/example/task-tracker/domain/failure"
	"github.com/example/task-tracker/modules/tracker"
)

const defaultActivityLimit = 20

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)
	if m.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.metrics.Handler()))
	}

	api := app.Group("/api/v1")
	if m.botToken != "" {
		api.Use(BotTokenMiddleware(m.botToken))
	}

	users := api.Group("/users")
	users.Post("/", m.registerUser)
	users.Get("/lookup", m.lookupUser)
	users.Get("/:id", m.getUser)
	users.Delete("/:id", m.deleteUser)

	tasks := api.Group("/tasks")
	tasks.Post("/", m.createTask)
	tasks.Get("/", m.listTasks)
	tasks.Get("/:id", m.getTask)
	tasks.Patch("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)

	api.Get("/activity", m.recentActivity)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"addr":   m.addr,
		},
	})
}

// registerUser handles POST /api/v1/users.
func (m *APIModule) registerUser(c *fiber.Ctx) error {
	var req RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	u, err := m.tracker.RegisterUser(c.Context(), tracker.RegisterUserRequest(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// lookupUser handles GET /api/v1/users/lookup?identity=.
func (m *APIModule) lookupUser(c *fiber.Ctx) error {
	identity := c.Query("identity")
	if identity == "" {
		return writeError(c, failure.NewValidationError("identity", "is required"))
	}

	id, err := m.tracker.ResolveUser(c.Context(), identity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(UserIDResponse{ID: id})
}

// getUser handles GET /api/v1/users/:id.
func (m *APIModule) getUser(c *fiber.Ctx) error {
	id, err := command.ParseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	u, err := m.tracker.GetUser(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(u)
}

// deleteUser handles DELETE /api/v1/users/:id. The user's tasks go with it.
func (m *APIModule) deleteUser(c *fiber.Ctx) error {
	id, err := command.ParseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	deleted, err := m.tracker.DeleteUser(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(SuccessResponse{Success: deleted})
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	t, err := m.tracker.CreateTask(c.Context(), tracker.CreateTaskRequest(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// listTasks handles GET /api/v1/tasks?user_id=.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	userID, err := command.ParseID("user_id", c.Query("user_id"))
	if err != nil {
		return writeError(c, err)
	}

	tasks, err := m.tracker.ListTasks(c.Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(tasks)
}

// getTask handles GET /api/v1/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	id, err := command.ParseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	t, err := m.tracker.GetTask(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// updateTask handles PATCH /api/v1/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	id, err := command.ParseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	t, err := m.tracker.SetTaskStatus(c.Context(), tracker.SetTaskStatusRequest{
		TaskID: id,
		Done:   req.Done,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	id, err := command.ParseID("id", c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}

	deleted, err := m.tracker.DeleteTask(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(SuccessResponse{Success: deleted})
}

// recentActivity handles GET /api/v1/activity?limit=.
func (m *APIModule) recentActivity(c *fiber.Ctx) error {
	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return writeError(c, failure.NewValidationError("limit", "must be a positive integer"))
		}
		limit = n
	}

	entries, err := m.activity.Recent(c.Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(entries)
}

// writeError maps a failure onto its HTTP status. Anything that is not a
// domain failure is logged and reported as a bare 500.
func writeError(c *fiber.Ctx, err error) error {
	var se *tracker.ServiceError
	if errors.As(err, &se) {
		return c.Status(statusFor(se.Code)).JSON(ErrorResponse{
			Error:   se.Code,
			Message: se.Message,
			Fields:  se.Fields,
		})
	}

	var verr *failure.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   tracker.CodeValidation,
			Message: failure.ErrValidation.Error(),
			Fields:  verr.Fields,
		})
	}

	log.Printf("[api] %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "server_error",
		Message: "Internal Server Error",
	})
}

func statusFor(code string) int {
	switch code {
	case tracker.CodeValidation:
		return fiber.StatusBadRequest
	case tracker.CodeDuplicateIdentity:
		return fiber.StatusConflict
	case tracker.CodeUserNotFound, tracker.CodeTaskNotFound:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request body",
	})
}
