package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s2tools/s2ddl/internal/database"
	"github.com/s2tools/s2ddl/internal/diff"
	"github.com/s2tools/s2ddl/internal/generator"
	"github.com/s2tools/s2ddl/internal/reflection"
	"github.com/s2tools/s2ddl/internal/schema"
	"github.com/s2tools/s2ddl/internal/snapshot"
)

var (
	tables    []string
	outputDir string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "s2ddl",
	Short: "SingleStoreDB DDL compiler and reflector",
	Long:  `A tool to compile table definitions into SingleStoreDB CREATE TABLE statements and to reflect existing tables back into structured definitions.`,
}

var compileCmd = &cobra.Command{
	Use:   "compile <model.json>",
	Short: "Compile a table definition into DDL",
	Long:  `Read a table definition in JSON form ("-" for stdin) and print the CREATE TABLE statement.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

var reflectCmd = &cobra.Command{
	Use:   "reflect <table>",
	Short: "Reflect an existing table into a structured definition",
	Long:  `Fetch SHOW CREATE TABLE output for a table and print the parsed definition as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReflect,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [name]",
	Short: "Snapshot reflected table definitions",
	Long:  `Reflect tables from the configured database and store their definitions in a local snapshot file.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshot,
}

var diffCmd = &cobra.Command{
	Use:   "diff <snapshot1> <snapshot2>",
	Short: "Compare two snapshots",
	Long:  `Compare two schema snapshots and display the differences.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	snapshotCmd.Flags().StringSliceVar(&tables, "tables", nil, "Tables to snapshot (default: all tables)")
	snapshotCmd.Flags().StringVar(&outputDir, "output-dir", "./snapshots", "Output directory for snapshots")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(reflectCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(diffCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read table definition: %w", err)
	}

	var table schema.TableDefinition
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to parse table definition: %w", err)
	}

	ddl, err := generator.NewCompiler(nil).Compile(&table)
	if err != nil {
		return fmt.Errorf("failed to compile: %w", err)
	}

	fmt.Println(ddl)
	return nil
}

func runReflect(cmd *cobra.Command, args []string) error {
	exec, err := connect()
	if err != nil {
		return err
	}
	defer exec.Close()

	ddl, err := exec.ShowCreateTable(args[0])
	if err != nil {
		return err
	}

	table, err := reflection.Parse(ddl)
	if err != nil {
		return fmt.Errorf("failed to parse DDL: %w", err)
	}

	out, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	fmt.Println(string(out))
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	config, err := database.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	exec, err := connect()
	if err != nil {
		return err
	}
	defer exec.Close()

	var filename string
	if len(args) > 0 {
		filename = args[0]
		if !strings.HasSuffix(filename, ".db") {
			filename += ".db"
		}
	} else {
		timestamp := time.Now().Format("2006-01-02-15-04-05")
		filename = fmt.Sprintf("%s-%s.db", config.Database, timestamp)
	}

	outputPath := filepath.Join(outputDir, filename)

	fmt.Printf("Creating snapshot: %s\n", outputPath)
	if err := snapshot.Create(exec, tables, outputPath); err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	fmt.Printf("Snapshot created successfully: %s\n", outputPath)
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	fmt.Printf("Loading snapshot: %s\n", args[0])
	snap1, err := snapshot.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load snapshot1: %w", err)
	}

	fmt.Printf("Loading snapshot: %s\n", args[1])
	snap2, err := snapshot.Load(args[1])
	if err != nil {
		return fmt.Errorf("failed to load snapshot2: %w", err)
	}

	fmt.Printf("\n=== Comparing snapshots ===\n\n")
	result := diff.Compare(snap1.Tables, snap2.Tables)
	diff.Display(result)

	return nil
}

func connect() (*database.SingleStore, error) {
	config, err := database.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	exec := database.NewSingleStore(config)
	if err := exec.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return exec, nil
}
