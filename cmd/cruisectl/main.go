// Command cruisectl is a thin gRPC client for cruised: each subcommand
// wraps exactly one RPC call.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/willdeuschle/cruise/pkg/client"
	"github.com/willdeuschle/cruise/pkg/rpc"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var addr string

var rootCmd = &cobra.Command{
	Use:   "cruisectl",
	Short: "client for cruised",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "[::1]:50051", "cruised address")
	rootCmd.AddCommand(createCmd, startCmd, stopCmd, deleteCmd, getCmd, listCmd)
}

func dial() (*client.Client, func(), error) {
	c, err := client.NewClient(addr)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { c.Close() }, nil
}

func callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

var (
	createName    string
	createCommand string
	createArgs    []string
	createRootfs  string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "create a container",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := callCtx()
		defer cancel()

		id, err := c.CreateContainer(ctx, createName, createCommand, createArgs, createRootfs)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", id)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "container name")
	createCmd.Flags().StringVar(&createCommand, "command", "", "entrypoint command")
	createCmd.Flags().StringSliceVar(&createArgs, "arg", nil, "entrypoint argument (repeatable)")
	createCmd.Flags().StringVar(&createRootfs, "rootfs", "", "path to the container's rootfs")
}

var startCmd = &cobra.Command{
	Use:   "start <container-id>",
	Short: "start a created container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := callCtx()
		defer cancel()

		if err := c.StartContainer(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("started %s\n", args[0])
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <container-id>",
	Short: "stop a running container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := callCtx()
		defer cancel()

		if err := c.StopContainer(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("stopped %s\n", args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <container-id>",
	Short: "delete a created or stopped container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := callCtx()
		defer cancel()

		if err := c.DeleteContainer(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <container-id>",
	Short: "print a single container's record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := callCtx()
		defer cancel()

		resp, err := c.GetContainer(ctx, args[0])
		if err != nil {
			return err
		}
		printContainer(resp)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "print every container's record",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := callCtx()
		defer cancel()

		containers, err := c.ListContainers(ctx)
		if err != nil {
			return err
		}
		for _, resp := range containers {
			printContainer(resp)
		}
		return nil
	},
}

func printContainer(c *rpc.GetContainerResponse) {
	fmt.Printf("id:          %s\n", c.ID)
	fmt.Printf("name:        %s\n", c.Name)
	fmt.Printf("status:      %s\n", c.Status)
	fmt.Printf("exit_code:   %d\n", c.ExitCode)
	fmt.Printf("created_at:  %s\n", c.CreatedAt)
	fmt.Printf("started_at:  %s\n", c.StartedAt)
	fmt.Printf("finished_at: %s\n", c.FinishedAt)
	fmt.Printf("command:     %s %s\n", c.Command, strings.Join(c.Args, " "))
	fmt.Println()
}
