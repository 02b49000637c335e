// Command console is the terminal front end for the dashboard: pick an AI
// employee, submit an instruction, and manage saved documents.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/client"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/console"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "AI数字公司指挥中心 command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("api-url", "http://localhost:8080", "backend base URL")
	root.PersistentFlags().String("config", "", "config file (default: user config dir)")

	cobra.OnInitialize(func() { initConfig(root) })

	root.AddCommand(
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newMeCmd(),
		newGenerateCmd(),
		newDocsCmd(),
	)
	return root
}

func initConfig(root *cobra.Command) {
	if path, _ := root.PersistentFlags().GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigFile(defaultConfigPath())
	}
	viper.SetEnvPrefix("DASHBOARD")
	viper.AutomaticEnv()
	if err := viper.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url")); err != nil {
		log.Fatalf("bind api-url flag failed: %v", err)
	}
	// Missing config file just means first run.
	_ = viper.ReadInConfig()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "ai-agent-dashboard", "config.yaml")
}

func newClient() *client.Client {
	c := client.New(viper.GetString("api_url"))
	c.SetToken(viper.GetString("token"))
	return c
}

func saveToken(token string) error {
	viper.Set("token", token)
	path := viper.ConfigFileUsed()
	if path == "" {
		path = defaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir failed: %w", err)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config failed: %w", err)
	}
	return nil
}

func newRegisterCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClient().Register(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			if err := saveToken(result.Token); err != nil {
				return err
			}
			fmt.Printf("registered and signed in as %s\n", result.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	for _, flag := range []string{"username", "email", "password"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
	return cmd
}

func newLoginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClient().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := saveToken(result.Token); err != nil {
				return err
			}
			fmt.Printf("signed in as %s\n", result.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	for _, flag := range []string{"username", "password"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			if c.Token() == "" {
				fmt.Println("not signed in")
				return nil
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := saveToken(""); err != nil {
				return err
			}
			fmt.Println("signed out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := newClient().Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("id=%d username=%s email=%s\n", user.ID, user.Username, user.Email)
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var provider, persona string
	cmd := &cobra.Command{
		Use:   "generate <instruction>",
		Short: "Send an instruction to the selected AI employee",
		Long: "Send an instruction to the selected AI employee.\n\n" +
			"Available employees:\n" + personaListing(),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := newClient()
			session := console.NewSession(apiClient)
			session.SetAuthenticated(apiClient.Token() != "")

			if err := session.SelectProvider(provider); err != nil {
				return err
			}
			resolved, err := resolvePersona(persona)
			if err != nil {
				return err
			}
			if err := session.SelectPersona(resolved); err != nil {
				return err
			}
			session.Prompt = args[0]

			fmt.Println(console.LoadingMarker)
			if err := session.Generate(cmd.Context()); err != nil {
				fmt.Println(session.Output)
				return err
			}
			fmt.Println(session.Output)
			if session.Authenticated() {
				fmt.Printf("saved, %d document(s) on file\n", len(session.Documents))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "openai", "openai or gemini")
	cmd.Flags().StringVar(&persona, "employee", "", "AI employee name or number (1-5)")
	if err := cmd.MarkFlagRequired("employee"); err != nil {
		panic(err)
	}
	return cmd
}

// resolvePersona accepts either the full employee name or its 1-based
// position in the listing.
func resolvePersona(raw string) (string, error) {
	if index, err := strconv.Atoi(raw); err == nil {
		if index < 1 || index > len(console.Personas) {
			return "", fmt.Errorf("employee number must be 1-%d", len(console.Personas))
		}
		return console.Personas[index-1], nil
	}
	return raw, nil
}

func personaListing() string {
	out := ""
	for i, p := range console.Personas {
		out += fmt.Sprintf("  %d. %s\n", i+1, p)
	}
	return out
}

func newDocsCmd() *cobra.Command {
	docs := &cobra.Command{
		Use:   "docs",
		Short: "Manage saved documents",
	}
	docs.AddCommand(newDocsListCmd(), newDocsDeleteCmd(), newDocsUploadCmd())
	return docs
}

func newDocsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your documents, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			session := authenticatedSession()
			if err := session.RefreshDocuments(cmd.Context()); err != nil {
				return err
			}
			if len(session.Documents) == 0 {
				fmt.Println("no documents")
				return nil
			}
			for _, document := range session.Documents {
				fmt.Printf("%-6d %-14s %-52s %s\n",
					document.ID, document.Employee, document.Title,
					document.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newDocsDeleteCmd() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			documentID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}
			session := authenticatedSession()
			if err := session.DeleteDocument(cmd.Context(), uint(documentID), confirmed); err != nil {
				return err
			}
			fmt.Printf("deleted document %d\n", documentID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the deletion")
	return cmd
}

func newDocsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and record it as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s failed: %w", args[0], err)
			}
			defer file.Close()

			session := authenticatedSession()
			document, err := session.Upload(cmd.Context(), filepath.Base(args[0]), file)
			if err != nil {
				return err
			}
			fmt.Printf("uploaded as document %d: %s\n", document.ID, document.Content)
			return nil
		},
	}
}

func authenticatedSession() *console.Session {
	apiClient := newClient()
	session := console.NewSession(apiClient)
	session.SetAuthenticated(apiClient.Token() != "")
	return session
}
