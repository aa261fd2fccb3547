package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/audit"
	infraRepo "github.com/BruksfildServices01/agent-crm/internal/infra/repository"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	ucAgent "github.com/BruksfildServices01/agent-crm/internal/usecase/agent"
)

var (
	agentUsername string
	agentPassword string
)

var createAgentCmd = &cobra.Command{
	Use:   "create-agent",
	Short: "Create an agent account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db, log)

		dispatcher := audit.NewDispatcher(audit.New(db), log)
		defer dispatcher.Close()

		uc := ucAgent.NewCreateAgent(infraRepo.NewCRMGormRepository(db), dispatcher, access.Policy{})
		operator := access.Principal{Username: "cli", Role: models.RoleAdmin, Superuser: true}

		user, err := uc.Execute(cmd.Context(), operator, ucAgent.CreateAgentInput{
			Username: agentUsername,
			Password: agentPassword,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created agent %q (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	createAgentCmd.Flags().StringVar(&agentUsername, "username", "", "agent username")
	createAgentCmd.Flags().StringVar(&agentPassword, "password", "", "agent password (min 6 characters)")
	_ = createAgentCmd.MarkFlagRequired("username")
	_ = createAgentCmd.MarkFlagRequired("password")
}
