package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polemica/polemica/config"
	"github.com/polemica/polemica/db"
	"github.com/polemica/polemica/errors"
	"github.com/polemica/polemica/logger"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the Polemica database",
	Long: `Manage canvas database operations.

Examples:
  polemica db migrate    # Apply pending migrations
  polemica db stats      # Show canvas statistics`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show canvas database statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

// openDatabase opens and migrates the database. An empty path falls back
// to the configured path (DB_PATH env wins over config file).
func openDatabase(path string) (*sql.DB, error) {
	if path == "" {
		resolved, err := config.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve database path")
		}
		path = resolved
	}

	database, err := db.Open(path, logger.Logger)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrap(err, "failed to migrate database")
	}

	return database, nil
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Println("Migrations applied")
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	database, err := openDatabase("")
	if err != nil {
		return err
	}
	defer database.Close()

	dbPath, _ := config.GetDatabasePath()

	var canvases, nodes, edges, hidden int
	if err := database.QueryRow("SELECT COUNT(*) FROM canvases").Scan(&canvases); err != nil {
		return errors.Wrap(err, "failed to count canvases")
	}
	if err := database.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&nodes); err != nil {
		return errors.Wrap(err, "failed to count nodes")
	}
	if err := database.QueryRow("SELECT COUNT(*) FROM edges").Scan(&edges); err != nil {
		return errors.Wrap(err, "failed to count edges")
	}
	if err := database.QueryRow("SELECT COUNT(*) FROM nodes WHERE position_x IS NULL OR position_y IS NULL").Scan(&hidden); err != nil {
		return errors.Wrap(err, "failed to count hidden nodes")
	}

	fmt.Println("Database Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()
	fmt.Printf("Database Path: %s\n", dbPath)
	fmt.Printf("Canvases:      %d\n", canvases)
	fmt.Printf("Nodes:         %d\n", nodes)
	fmt.Printf("Edges:         %d\n", edges)
	fmt.Printf("Hidden Nodes:  %d (non-finite positions)\n", hidden)

	return nil
}
