package api

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aparra/img2card-bot/internal/agent"
	"github.com/aparra/img2card-bot/internal/config"
	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Server exposes the pipeline over HTTP for the PWA: upload a photo, get a
// downloadable .vcf back.
type Server struct {
	app    *fiber.App
	agent  *agent.CardAgent
	logger *zap.Logger
	addr   string
}

func NewServer(cfg config.APIConfig, cardAgent *agent.CardAgent, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "img2card-api",
		BodyLimit: 25 << 20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
	}))

	server := &Server{
		app:    app,
		agent:  cardAgent,
		logger: logger,
		addr:   cfg.ListenAddr,
	}

	app.Get("/healthz", server.handleHealth)
	app.Post("/v1/cards", server.handleCreateCard)

	return server
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleCreateCard accepts a multipart "photo" plus optional latitude and
// longitude form fields. Caller coordinates take precedence over EXIF ones
// inside the pipeline.
func (s *Server) handleCreateCard(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "photo file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "photo file is not readable")
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "photo file is not readable")
	}

	coords, err := parseCoordinates(c.FormValue("latitude"), c.FormValue("longitude"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	card := s.agent.CreateCard(c.Context(), agent.Request{
		Path:        fileHeader.Filename,
		Raw:         raw,
		Coordinates: coords,
	})
	if card == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "could not build a card from this image")
	}

	name := domain.CardFullName(card)
	if name == "" {
		name = "contact"
	}

	c.Set(fiber.HeaderContentType, "text/vcard; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name+".vcf"))
	return c.SendString(card)
}

func parseCoordinates(latValue, lonValue string) (*domain.Coordinates, error) {
	if latValue == "" || lonValue == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latValue, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude: %q", latValue)
	}
	lon, err := strconv.ParseFloat(lonValue, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude: %q", lonValue)
	}

	coords := domain.Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return nil, fmt.Errorf("coordinates out of range")
	}
	return &coords, nil
}

func (s *Server) Listen() error {
	s.logger.Info("API listening", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
