// Package api is the external surface adapter (C5): Fiber HTTP handlers for
// switch/query/estop/clear, and a WebSocket endpoint streaming the manager's
// four notification topics, one retained message per topic replayed on
// connect. Grounded on the teacher's pkg/web.Server, with the dashboard's
// CORS/static/tool-trigger surface replaced by the controller-manager's
// own endpoints.
package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/matthewgan/rocoma/pkg/manager"
	"github.com/matthewgan/rocoma/pkg/notify"
)

// Server is the HTTP + WebSocket adapter in front of a manager.Manager.
type Server struct {
	app *fiber.App
	mgr *manager.Manager
	bus *notify.Bus
	log *slog.Logger
}

// New builds a Server wired to mgr and bus. Call Listen to serve.
func New(mgr *manager.Manager, bus *notify.Bus, log *slog.Logger) *Server {
	s := &Server{mgr: mgr, bus: bus, log: log}

	app := fiber.New(fiber.Config{
		AppName:               "rocoma controller-manager",
		DisableStartupMessage: true,
	})

	v1 := app.Group("/api/v1")
	v1.Post("/controllers/switch", s.handleSwitch)
	v1.Get("/controllers", s.handleAvailable)
	v1.Get("/controllers/active", s.handleActive)
	v1.Post("/estop", s.handleEstop)
	v1.Post("/estop/clear", s.handleEstopClear)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Listen starts serving on addr. Blocks until the server stops.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

type switchRequest struct {
	Name string `json:"name"`
}

type switchResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleSwitch(c *fiber.Ctx) error {
	var req switchRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	outcome := s.mgr.SwitchController(req.Name)
	return c.JSON(switchResponse{Status: outcome.String()})
}

func (s *Server) handleAvailable(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"available_controllers": s.mgr.AvailableControllers()})
}

func (s *Server) handleActive(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"active_controller": s.mgr.ActiveController()})
}

type estopResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleEstop(c *fiber.Ctx) error {
	res := s.mgr.EmergencyStop(manager.OperatorEmergencyStop)
	return c.JSON(estopResponse{Success: res.Success, Message: res.Message})
}

func (s *Server) handleEstopClear(c *fiber.Ctx) error {
	res := s.mgr.ClearEmergencyStop()
	return c.JSON(estopResponse{Success: res.Success, Message: res.Message})
}

type eventMessage struct {
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

// handleEventsWS streams the retained/latched notification bus: on connect
// every topic's last value is replayed immediately (notify.Bus.Subscribe's
// own contract), then every subsequent publish is forwarded until the
// client disconnects.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	_, events, unsubscribe := s.bus.Subscribe(32)
	defer unsubscribe()

	for ev := range events {
		if err := c.WriteJSON(eventMessage{Topic: ev.Topic, Payload: ev.Payload}); err != nil {
			s.log.Debug("events websocket write failed, closing", "error", err)
			return
		}
	}
}
