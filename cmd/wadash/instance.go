package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
	"github.com/zulandar/wadash/internal/confirm"
	"github.com/zulandar/wadash/internal/directory"
)

func newInstanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instance",
		Aliases: []string{"inst"},
		Short:   "Instance management commands",
	}

	cmd.AddCommand(newInstanceListCmd())
	cmd.AddCommand(newInstanceCreateCmd())
	cmd.AddCommand(newInstanceConnectCmd())
	cmd.AddCommand(newInstanceLogoutCmd())
	cmd.AddCommand(newInstanceDeleteCmd())
	return cmd
}

// openView opens the app and a directory view whose notices are also
// printed to the command's output.
func openView(cmd *cobra.Command, configPath string) (*app, *directory.View, error) {
	a, err := openApp(configPath)
	if err != nil {
		return nil, nil, err
	}
	a.notifier.Add(printer(cmd.OutOrStdout()))
	return a, directory.New(a.gw, a.notifier), nil
}

func newInstanceListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instances",
		Long:  "Lists every instance on the gateway with its connection status.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstanceList(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runInstanceList(cmd *cobra.Command, configPath string) error {
	a, view, err := openView(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := view.Refresh(cmd.Context()); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cards := view.Cards()
	if len(cards) == 0 {
		fmt.Fprintln(out, "No instances found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tQR")
	for _, c := range cards {
		qr := "-"
		if c.ShowQR {
			qr = "pending scan"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Badge, qr)
	}
	return w.Flush()
}

func newInstanceCreateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new instance",
		Long:  "Creates a new instance on the gateway. Pair it afterwards with 'wadash instance connect'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstanceCreate(cmd, configPath, args[0])
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runInstanceCreate(cmd *cobra.Command, configPath, name string) error {
	a, view, err := openView(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := view.Create(cmd.Context(), name); err != nil {
		if errors.Is(err, directory.ErrBlankName) {
			return fmt.Errorf("instance name is required")
		}
		return err
	}
	return nil
}

func newInstanceConnectCmd() *cobra.Command {
	var (
		configPath string
		qrOut      string
	)

	cmd := &cobra.Command{
		Use:   "connect <name>",
		Short: "Start pairing an instance",
		Long:  "Asks the gateway to connect the instance and renders the pairing QR code in the terminal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstanceConnect(cmd, configPath, args[0], qrOut)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&qrOut, "qr-out", "", "also write the QR code PNG to this file")
	return cmd
}

func runInstanceConnect(cmd *cobra.Command, configPath, name, qrOut string) error {
	a, view, err := openView(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := view.Connect(cmd.Context(), name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Code != "" {
		qrterminal.GenerateHalfBlock(res.Code, qrterminal.L, out)
	}
	if res.PairingCode != "" {
		fmt.Fprintf(out, "Pairing code: %s\n", res.PairingCode)
	}

	png := res.PNGBase64()
	switch {
	case qrOut != "" && png == "":
		return fmt.Errorf("gateway returned no QR image for %s", name)
	case qrOut != "":
		data, err := base64.StdEncoding.DecodeString(png)
		if err != nil {
			return fmt.Errorf("decode QR image: %w", err)
		}
		if err := os.WriteFile(qrOut, data, 0o644); err != nil {
			return fmt.Errorf("write QR image: %w", err)
		}
		fmt.Fprintf(out, "QR code written to %s\n", qrOut)
	case res.Code == "" && png != "":
		fmt.Fprintln(out, "Use --qr-out to save the QR code image.")
	}
	return nil
}

func newInstanceLogoutCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "logout <name>",
		Short: "Log out an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstanceLogout(cmd, configPath, args[0])
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runInstanceLogout(cmd *cobra.Command, configPath, name string) error {
	a, view, err := openView(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	return view.Logout(cmd.Context(), name)
}

func newInstanceDeleteCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an instance",
		Long:  "Deletes an instance from the gateway after confirmation.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstanceDelete(cmd, configPath, args[0], yes)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runInstanceDelete(cmd *cobra.Command, configPath, name string, yes bool) error {
	a, view, err := openView(cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	err = view.Delete(cmd.Context(), name, confirmerFor(cmd, yes))
	if errors.Is(err, confirm.ErrDeclined) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	return err
}

// newPrompter is swapped in tests.
var newPrompter = func(cmd *cobra.Command) confirm.Confirmer {
	return confirm.NewPrompter(cmd.OutOrStdout())
}

// confirmerFor approves everything with --yes and asks on the terminal otherwise.
func confirmerFor(cmd *cobra.Command, yes bool) confirm.Confirmer {
	if yes {
		return confirm.Always
	}
	return newPrompter(cmd)
}

