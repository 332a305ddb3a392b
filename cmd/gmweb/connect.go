// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var connectBackground bool

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect an already-paired session and stream events",
	Long: `connect restores the persisted AuthState for --key, refreshes the
tachyon token if needed, opens the long-poll stream, and prints every
event it receives until interrupted.

With --background it instead runs the short-lived, push-wake variant:
it waits for a bounded window of forward progress and then exits,
suitable for invocation from a push-notification handler.`,
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().BoolVar(&connectBackground, "background", false, "run the short-lived background-sync variant instead of streaming indefinitely")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, _, err := newClientFromStore(ctx)
	if err != nil {
		return err
	}

	if !c.State().IsLoggedIn() {
		return fmt.Errorf("no paired session found for key %q; run \"gmweb pair\" first", storeKey)
	}

	if connectBackground {
		err := c.ConnectBackground(ctx)
		if err != nil {
			return fmt.Errorf("background connect: %w", err)
		}
		fmt.Println("background connect: received at least one update")
		return nil
	}

	go waitForInterrupt(cancel)
	if err := c.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	fmt.Println("connected, streaming events (ctrl-c to stop)")

	<-ctx.Done()
	c.Disconnect()
	return nil
}
