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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var pairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Pair a new browser session and print the QR login URL",
	Long: `pair generates a fresh pairing identity, registers it with the
messaging service, prints the URL to render as a QR code in the
Google Messages phone app, and then keeps the stream open waiting for
the phone to scan it.`,
	RunE: runPair,
}

func init() {
	rootCmd.AddCommand(pairCmd)
}

func runPair(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go waitForInterrupt(cancel)

	c, _, err := newClientFromStore(ctx)
	if err != nil {
		return err
	}

	url, err := c.StartLogin(ctx)
	if err != nil {
		return fmt.Errorf("starting login: %w", err)
	}
	fmt.Println("Scan this URL as a QR code in Google Messages > Settings > Device pairing:")
	fmt.Println(url)

	<-ctx.Done()
	c.Disconnect()
	return nil
}

// waitForInterrupt cancels cancel on SIGINT/SIGTERM.
func waitForInterrupt(cancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	cancel()
}
