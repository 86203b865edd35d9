package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/go-moto/hse"
)

var readCount uint16

var readCmd = &cobra.Command{
	Use:   "read {u8|i16|i32|f32|pos} <index>",
	Short: "Read a controller variable",
	Long: `Read a controller variable by type and index.

Types: u8 (byte), i16, i32, f32 and pos (position). Position variables are
printed as YAML. With --count, u8 reads a contiguous block of byte
variables; the controller requires an even count.`,
	Args: cobra.ExactArgs(2),
	RunE: runRead,
}

var writeCmd = &cobra.Command{
	Use:   "write {u8|i16|i32|f32|pos} <index> <value>",
	Short: "Write a controller variable",
	Long: `Write a controller variable by type and index.

For pos, value is the path of a YAML file holding a pulse or cartesian
position.`,
	Args: cobra.ExactArgs(3),
	RunE: runWrite,
}

func init() {
	readCmd.Flags().Uint16Var(&readCount, "count", 0, "Number of byte variables to read (u8 only, even)")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
}

func parseIndex(arg string) (uint16, error) {
	index, err := strconv.ParseUint(arg, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid variable index %q: %w", arg, err)
	}

	return uint16(index), nil
}

func runRead(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	switch args[0] {
	case "u8":
		if readCount > 0 {
			values, err := client.ReadUint8Vars(index, readCount, timeout)
			if err != nil {
				return err
			}
			for i, v := range values {
				fmt.Printf("B%03d = %d\n", int(index)+i, v)
			}

			return nil
		}

		value, err := client.ReadUint8Var(index, timeout)
		if err != nil {
			return err
		}
		fmt.Println(value)
	case "i16":
		value, err := client.ReadInt16Var(index, timeout)
		if err != nil {
			return err
		}
		fmt.Println(value)
	case "i32":
		value, err := client.ReadInt32Var(index, timeout)
		if err != nil {
			return err
		}
		fmt.Println(value)
	case "f32":
		value, err := client.ReadFloat32Var(index, timeout)
		if err != nil {
			return err
		}
		fmt.Println(value)
	case "pos":
		position, err := client.ReadPositionVar(index, timeout)
		if err != nil {
			return err
		}

		return printYAML(position)
	default:
		return fmt.Errorf("unknown variable type %q", args[0])
	}

	return nil
}

func runWrite(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	client, err := openClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()

	switch args[0] {
	case "u8":
		value, err := strconv.ParseUint(args[2], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid byte value %q: %w", args[2], err)
		}

		return client.WriteUint8Var(index, uint8(value), timeout)
	case "i16":
		value, err := strconv.ParseInt(args[2], 10, 16)
		if err != nil {
			return fmt.Errorf("invalid 16-bit value %q: %w", args[2], err)
		}

		return client.WriteInt16Var(index, int16(value), timeout)
	case "i32":
		value, err := strconv.ParseInt(args[2], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid 32-bit value %q: %w", args[2], err)
		}

		return client.WriteInt32Var(index, int32(value), timeout)
	case "f32":
		value, err := strconv.ParseFloat(args[2], 32)
		if err != nil {
			return fmt.Errorf("invalid float value %q: %w", args[2], err)
		}

		return client.WriteFloat32Var(index, float32(value), timeout)
	case "pos":
		position, err := loadPosition(args[2])
		if err != nil {
			return err
		}

		return client.WritePositionVar(index, position, timeout)
	default:
		return fmt.Errorf("unknown variable type %q", args[0])
	}
}

// loadPosition reads a position from a YAML file. Files with a joints list
// decode as pulse positions, everything else as cartesian.
func loadPosition(path string) (hse.Position, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Joints []int32 `yaml:"joints"`
	}
	if err := yaml.Unmarshal(data, &probe); err == nil && probe.Joints != nil {
		var position hse.PulsePosition
		if err := yaml.Unmarshal(data, &position); err != nil {
			return nil, fmt.Errorf("parse pulse position %s: %w", path, err)
		}

		return position, nil
	}

	var position hse.CartesianPosition
	if err := yaml.Unmarshal(data, &position); err != nil {
		return nil, fmt.Errorf("parse cartesian position %s: %w", path, err)
	}

	return position, nil
}

func printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(data))

	return nil
}
