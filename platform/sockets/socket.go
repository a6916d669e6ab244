// Package socket runs the socket.io transport: the ordered client→host
// command channel and the ordered host→room broadcast channel the engine
// relies on. It holds no game logic; every event handler decodes a
// payload, hands the command to the session registry, and broadcasts
// whatever the engine emitted.
package socket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gomodule/redigo/redis"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/hybridboard/gametable-backend/app/models"
	"github.com/hybridboard/gametable-backend/engine"
	"github.com/hybridboard/gametable-backend/engine/state"
	"github.com/hybridboard/gametable-backend/platform/cache"
	"github.com/hybridboard/gametable-backend/platform/config"
	"github.com/hybridboard/gametable-backend/platform/database"
	"github.com/hybridboard/gametable-backend/platform/queries"
)

type basePayload struct {
	GameID string `json:"game_id"`
	UserID string `json:"user_id"`
}

type cellPayload struct {
	basePayload
	CellID string `json:"cell_id"`
}

type placePayload struct {
	basePayload
	Ship       string `json:"ship"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Horizontal bool   `json:"horizontal"`
}

type attackPayload struct {
	basePayload
	TargetID string `json:"target_id"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
}

type tradePayload struct {
	basePayload
	TargetID       string   `json:"target_id"`
	OfferedCells   []string `json:"offered_cells"`
	RequestedCells []string `json:"requested_cells"`
	OfferedMoney   int      `json:"offered_money"`
	RequestedMoney int      `json:"requested_money"`
	Accept         bool     `json:"accept"`
}

// CreateSocketIOServer wires the transport and blocks serving it.
func CreateSocketIOServer() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("socket server configuration")
	}

	server, err := socketio.NewServer(nil)
	if err != nil {
		logrus.WithError(err).Fatal("socket server creation")
	}

	pool, err := cache.CreateRedisPool()
	if err != nil {
		logrus.WithError(err).Fatal("redis pool")
	}
	defer pool.Close()

	registry := engine.NewRegistry()
	log := logrus.WithField("component", "sockets")

	// broadcast sends every engine event to the game's room in emission
	// order, which preserves the mutation order clients rely on.
	broadcast := func(gameID string, events []engine.Event) {
		for _, ev := range events {
			payload, err := json.Marshal(ev)
			if err != nil {
				log.WithError(err).Error("event marshal")
				continue
			}
			server.BroadcastToRoom("/", gameID, ev.EventName(), string(payload))
			if over, ok := ev.(engine.GameOver); ok {
				finishGame(gameID, over.WinnerID, registry, pool)
			}
		}
	}

	// dispatch runs one player command and routes the outcome: rejections
	// go back to the issuer only, everything else to the room.
	dispatch := func(s socketio.Conn, p basePayload, cmd engine.Command) {
		events, err := registry.Do(p.GameID, func(sess *engine.Session) ([]engine.Event, error) {
			return sess.HandleCommand(p.UserID, cmd)
		})
		if err != nil {
			if rej, ok := engine.AsRejection(err); ok {
				s.Emit("error-message", rej.Msg)
				return
			}
			log.WithError(err).Error("command failed")
			s.Emit("error-message", "command failed")
			return
		}
		broadcast(p.GameID, events)
	}

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		return nil
	})

	server.OnEvent("/", "join-game", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) != nil || p.GameID == "" || p.UserID == "" {
			s.Emit("error-message", "malformed join request")
			return
		}
		db := database.PostgreSQLConnection()
		defer db.Close()

		game, err := queries.GameByID(p.GameID, db)
		if err != nil || game.Status != models.GameOpen {
			s.Emit("error-message", "invalid game")
			s.Emit("failed")
			return
		}
		user, err := queries.GetUserData(p.UserID, db)
		if err != nil {
			s.Emit("error-message", "user not authenticated")
			s.Emit("failed")
			return
		}

		if !registry.Has(p.GameID) {
			rc, err := queries.GameRules(game)
			if err != nil {
				s.Emit("error-message", "corrupt rule configuration")
				return
			}
			if _, err := registry.Create(p.GameID, rc, time.Now().UnixNano(), log); err != nil {
				s.Emit("error-message", "could not open session")
				return
			}
		}
		_, err = registry.Do(p.GameID, func(sess *engine.Session) ([]engine.Event, error) {
			return nil, sess.AddPlayer(p.UserID, user.Email)
		})
		if err != nil {
			if rej, ok := engine.AsRejection(err); ok {
				s.Emit("error-message", rej.Msg)
			}
			s.Emit("failed")
			return
		}
		if err := queries.CreatePlayer(models.Player{
			Game_id:  p.GameID,
			User_id:  p.UserID,
			Username: user.Email,
		}, db); err != nil {
			s.Emit("error-message", "failed creating player")
			s.Emit("failed")
			return
		}
		conn := pool.Get()
		defer conn.Close()
		cache.RPUSH(p.GameID+".order", []interface{}{p.UserID}, conn)

		s.Join(p.GameID)
		server.BroadcastToRoom("/", p.GameID, "player-join", p.UserID)
		s.Emit("joined-game", p.GameID)
	})

	server.OnEvent("/", "leave-game", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) != nil {
			return
		}
		s.Leave(p.GameID)

		db := database.PostgreSQLConnection()
		defer db.Close()
		conn := pool.Get()
		defer conn.Close()

		queries.DeletePlayer(p.UserID, p.GameID, db)
		cache.LREM(p.GameID+".order", p.UserID, conn)

		events, err := registry.Do(p.GameID, func(sess *engine.Session) ([]engine.Event, error) {
			if sess.Phase() == state.PhaseWaiting {
				return nil, sess.RemovePlayer(p.UserID)
			}
			return sess.Forfeit(p.UserID)
		})
		if err == nil {
			broadcast(p.GameID, events)
		}
		server.BroadcastToRoom("/", p.GameID, "player-left", p.UserID)
	})

	server.OnEvent("/", "start-game", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) != nil {
			return
		}
		events, err := registry.Do(p.GameID, func(sess *engine.Session) ([]engine.Event, error) {
			return sess.Start()
		})
		if err != nil {
			if rej, ok := engine.AsRejection(err); ok {
				s.Emit("error-message", rej.Msg)
			}
			return
		}
		db := database.PostgreSQLConnection()
		defer db.Close()
		queries.SetGameStatus(p.GameID, models.GameInProgress, db)

		server.BroadcastToRoom("/", p.GameID, "game-start")
		broadcast(p.GameID, events)
	})

	server.OnEvent("/", "roll-dice", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p, engine.RollDice{})
		}
	})

	server.OnEvent("/", "end-turn", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p, engine.EndTurn{})
		}
	})

	server.OnEvent("/", "request-buy", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p, engine.PurchaseProperty{})
		}
	})

	server.OnEvent("/", "buy-house", func(s socketio.Conn, jsonStr string) {
		var p cellPayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p.basePayload, engine.BuildHouse{CellID: p.CellID})
		}
	})

	server.OnEvent("/", "buy-hotel", func(s socketio.Conn, jsonStr string) {
		var p cellPayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p.basePayload, engine.BuildHotel{CellID: p.CellID})
		}
	})

	server.OnEvent("/", "use-jail-card", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p, engine.UseJailToken{})
		}
	})

	server.OnEvent("/", "pay-out-jail", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p, engine.PayJailFine{})
		}
	})

	server.OnEvent("/", "place-ship", func(s socketio.Conn, jsonStr string) {
		var p placePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p.basePayload, engine.PlaceShip{
				Ship:       p.Ship,
				At:         state.Coord{Row: p.Row, Col: p.Col},
				Horizontal: p.Horizontal,
			})
		}
	})

	server.OnEvent("/", "attack", func(s socketio.Conn, jsonStr string) {
		var p attackPayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p.basePayload, engine.Attack{
				TargetID: p.TargetID,
				At:       state.Coord{Row: p.Row, Col: p.Col},
			})
		}
	})

	server.OnEvent("/", "propose-trade", func(s socketio.Conn, jsonStr string) {
		var p tradePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p.basePayload, engine.ProposeTrade{
				TargetID:       p.TargetID,
				OfferedCells:   p.OfferedCells,
				RequestedCells: p.RequestedCells,
				OfferedMoney:   p.OfferedMoney,
				RequestedMoney: p.RequestedMoney,
			})
		}
	})

	server.OnEvent("/", "respond-trade", func(s socketio.Conn, jsonStr string) {
		var p tradePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p.basePayload, engine.RespondTrade{Accept: p.Accept})
		}
	})

	server.OnEvent("/", "cancel-trade", func(s socketio.Conn, jsonStr string) {
		var p basePayload
		if json.Unmarshal([]byte(jsonStr), &p) == nil {
			dispatch(s, p, engine.CancelTrade{})
		}
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.WithError(e).Warn("socket error")
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		for _, room := range s.Rooms() {
			server.BroadcastToRoom("/", room, "player-left")
		}
		s.LeaveAll()
	})

	go server.Serve()
	defer server.Close()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	if err := http.ListenAndServe(cfg.SocketAddr, c.Handler(mux)); err != nil {
		log.WithError(err).Fatal("socket server stopped")
	}
}

// finishGame tears down a completed session: the lobby row flips to
// done, the roster leaves redis, and the registry entry is dropped.
// Mid-game state is never persisted.
func finishGame(gameID, winnerID string, registry *engine.Registry, pool *redis.Pool) {
	db := database.PostgreSQLConnection()
	defer db.Close()
	queries.SetGameStatus(gameID, models.GameDone, db)
	queries.DeleteGamePlayers(gameID, db)

	conn := pool.Get()
	defer conn.Close()
	cache.Del(gameID+".order", conn)

	registry.Remove(gameID)
	logrus.WithFields(logrus.Fields{"game": gameID, "winner": winnerID}).Info("game finished")
}
