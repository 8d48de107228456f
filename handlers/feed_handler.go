package handlers

import (
	"fmt"
	"log"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/wekesadev/park_spot/configs"
	"github.com/wekesadev/park_spot/models"
	"github.com/wekesadev/park_spot/websocket"
)

// ServeListingFeed is the realtime change feed. The client sends one auth
// message with its JWT and an optional category filter; from then on it
// receives listing change events until the connection closes.
func ServeListingFeed(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type     string `json:"type"`
		Token    string `json:"token"`
		Category string `json:"category"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("Feed auth failed: invalid or missing auth message, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		log.Printf("Feed auth failed: invalid token, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}

	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		log.Printf("Feed auth failed: invalid user_id, error: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	if authMsg.Category != "" &&
		authMsg.Category != models.CategoryLenderProvided &&
		authMsg.Category != models.CategoryNonAccountable {
		_ = c.WriteJSON(fiber.Map{"error": "Unknown category filter"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: userID, Category: authMsg.Category, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	// The feed is push-only; the read loop exists to notice the close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("Feed closed for client %s: %v", userID, err)
			} else {
				log.Printf("Feed read error for client %s: %v", userID, err)
			}
			break
		}
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}
