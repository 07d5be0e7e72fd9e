package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/persistence/db"
	"github.com/mesarpg/mesa/internal/persistence/repository"
)

// Seeds a local database with a playable demo campaign: one game master,
// two players and two tables.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoCfg := db.NewMongoDefaultConfig()
	client, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() {
		_ = db.DisconnectMongo(context.Background(), client)
	}()

	database := db.GetDatabase(client, mongoCfg)
	tables := repository.NewTableRepository(database)
	users := repository.NewUserDirectory(database)

	mestre := seedUser("Mestre")
	jogador1 := seedUser("Jogador1")
	jogador2 := seedUser("Jogador2")

	for _, user := range []*domain.User{mestre, jogador1, jogador2} {
		if err := users.Upsert(ctx, user); err != nil {
			log.Fatalf("failed to seed user %s: %v", user.Nickname, err)
		}
	}

	caverna := &domain.Table{
		ID:          uuid.NewString(),
		Name:        "A Caverna do Dragão",
		Description: "Campanha introdutória para novos jogadores.",
		OwnerID:     mestre.ID,
		CustomCSS:   ".action-log { background: #1d1a16; color: #e8dcc3; }",
	}
	floresta := &domain.Table{
		ID:          uuid.NewString(),
		Name:        "Floresta Sombria",
		Description: "Exploração e sobrevivência, sessões quinzenais.",
		OwnerID:     mestre.ID,
	}

	for _, table := range []*domain.Table{caverna, floresta} {
		if err := tables.Upsert(ctx, table); err != nil {
			log.Fatalf("failed to seed table %s: %v", table.Name, err)
		}

		members := []domain.TableMember{
			{TableID: table.ID, UserID: mestre.ID, Role: domain.RoleGameMaster},
			{TableID: table.ID, UserID: jogador1.ID, Role: domain.RolePlayer},
			{TableID: table.ID, UserID: jogador2.ID, Role: domain.RolePlayer},
		}
		for _, member := range members {
			if err := tables.AddMember(ctx, member); err != nil {
				log.Fatalf("failed to seed member %s of %s: %v", member.UserID, table.Name, err)
			}
		}
	}

	log.Printf("seeded 3 users and 2 tables (%s, %s)", caverna.ID, floresta.ID)
}

func seedUser(nickname string) *domain.User {
	user, err := domain.NewUser(nickname)
	if err != nil {
		log.Fatalf("invalid seed nickname %q: %v", nickname, err)
	}
	return user
}
