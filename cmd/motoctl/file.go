package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

// File transfers can take well over the per-command timeout; the whole
// transfer runs under one deadline.
var fileTimeout time.Duration

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Transfer files to and from the controller",
}

var fileListCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List files on the controller",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFileList,
}

var fileGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Download a file from the controller",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileGet,
}

var filePutCmd = &cobra.Command{
	Use:   "put <path>",
	Short: "Upload a file to the controller",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilePut,
}

var fileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a file on the controller",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileDelete,
}

var fileOutput string

func init() {
	fileCmd.PersistentFlags().DurationVar(&fileTimeout, "transfer-timeout", 30*time.Second, "Deadline for the whole transfer")
	fileGetCmd.Flags().StringVarP(&fileOutput, "output", "o", "", "Output path (defaults to the file name)")

	fileCmd.AddCommand(fileListCmd)
	fileCmd.AddCommand(fileGetCmd)
	fileCmd.AddCommand(filePutCmd)
	fileCmd.AddCommand(fileDeleteCmd)
	rootCmd.AddCommand(fileCmd)
}

func runFileList(cmd *cobra.Command, args []string) error {
	pattern := "*"
	if len(args) == 1 {
		pattern = args[0]
	}

	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	names, err := client.ReadFileList(pattern, fileTimeout)
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}

	return nil
}

func runFileGet(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	data, err := client.ReadFile(args[0], fileTimeout)
	if err != nil {
		return err
	}

	output := fileOutput
	if output == "" {
		output = args[0]
	}

	return os.WriteFile(output, data, 0o644)
}

func runFilePut(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	return client.WriteFile(filepath.Base(args[0]), data, fileTimeout)
}

func runFileDelete(cmd *cobra.Command, args []string) error {
	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	return client.DeleteFile(args[0], fileTimeout)
}
