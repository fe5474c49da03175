package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	agentstore "github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent/postgres"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/auth"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
	agentDatamodel "github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/datamodel/agent"
)

func vnd(v float64) *float64 { return &v }

var seedAgentTypes = []struct {
	Name        string
	MaximumDebt *float64
	Agents      []agentDatamodel.Agent
}{
	{
		Name:        "Loai 1",
		MaximumDebt: vnd(20_000_000),
		Agents: []agentDatamodel.Agent{
			{AgentName: "Dai ly Ben Thanh", DebtMoney: vnd(18_500_000)},
			{AgentName: "Dai ly Cho Lon", DebtMoney: vnd(4_000_000)},
		},
	},
	{
		Name:        "Loai 2",
		MaximumDebt: vnd(10_000_000),
		Agents: []agentDatamodel.Agent{
			{AgentName: "Dai ly Thu Duc", DebtMoney: vnd(9_000_000)},
			{AgentName: "Dai ly Go Vap"},
		},
	},
	{
		Name: "Loai 3",
		Agents: []agentDatamodel.Agent{
			{AgentName: "Dai ly Binh Thanh", DebtMoney: vnd(2_500_000)},
		},
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed agent types and agents for development, and print a bearer token per role.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm session: %v", err)
		}

		if clearData {
			for _, table := range []string{"payment_receipts", "agents", "agent_types"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared agent data")
		}

		repo := agentstore.NewRepository(db)
		for _, t := range seedAgentTypes {
			existing, err := repo.AgentTypeByName(ctx, t.Name)
			if err != nil {
				log.Fatalf("failed to look up agent type %s: %v", t.Name, err)
			}
			if existing != nil {
				fmt.Println("agent type already exists:", t.Name)
				continue
			}

			agentType := &agentDatamodel.AgentType{AgentTypeName: t.Name, MaximumDebt: t.MaximumDebt}
			if err := repo.CreateAgentType(ctx, agentType); err != nil {
				log.Fatalf("failed to insert agent type %s: %v", t.Name, err)
			}
			for _, a := range t.Agents {
				a.AgentTypeID = agentType.AgentTypeID
				if err := repo.CreateAgent(ctx, &a); err != nil {
					log.Fatalf("failed to insert agent %s: %v", a.AgentName, err)
				}
			}
			fmt.Printf("Seeded agent type %s with %d agents\n", t.Name, len(t.Agents))
		}

		if cfg.IsProduction() {
			return
		}
		tokens := auth.NewTokenSessionProvider(cfg.Security.JWTSecret, cfg.Security.Issuer, cfg.Security.TokenLeeway)
		for _, role := range access.Roles() {
			token, err := tokens.Issue("seed-"+string(role), 24*time.Hour, role)
			if err != nil {
				log.Fatalf("failed to issue token for %s: %v", role, err)
			}
			fmt.Printf("%s token: %s\n", role, token)
		}
	},
}
