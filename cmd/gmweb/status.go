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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the stored AuthState's pairing and token status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	c, _, err := newClientFromStore(ctx)
	if err != nil {
		return err
	}

	state := c.State()
	fmt.Printf("key:        %s\n", storeKey)
	fmt.Printf("logged in:  %v\n", state.IsLoggedIn())
	fmt.Printf("needs refresh: %v\n", state.NeedsTokenRefresh())

	if browser, ok := state.Browser(); ok {
		fmt.Printf("browser:    user=%s source=%s network=%s\n", browser.UserID, browser.SourceID, browser.Network)
	} else {
		fmt.Println("browser:    (not paired)")
	}
	if mobile, ok := state.Mobile(); ok {
		fmt.Printf("phone:      user=%s source=%s network=%s\n", mobile.UserID, mobile.SourceID, mobile.Network)
	}

	overall := c.Health().GetOverallStatus(ctx)
	fmt.Printf("health:     %s\n", overall)
	return nil
}
