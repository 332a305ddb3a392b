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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistration(t *testing.T) {
	assert.NotNil(t, PbliteEncodes)
	assert.NotNil(t, PbliteDecodes)
	assert.NotNil(t, PbliteCodecDuration)
	assert.NotNil(t, PbliteMessageSize)

	assert.NotNil(t, RPCsSent)
	assert.NotNil(t, RPCsAcked)
	assert.NotNil(t, RPCsPending)
	assert.NotNil(t, RPCRoundTrip)
	assert.NotNil(t, AckBatchesFlushed)
	assert.NotNil(t, AckQueueDepth)

	assert.NotNil(t, StreamOpens)
	assert.NotNil(t, StreamActive)
	assert.NotNil(t, ElementsReceived)
	assert.NotNil(t, FrameOverflows)
	assert.NotNil(t, UpdatesDeduped)
	assert.NotNil(t, EventsDispatched)
	assert.NotNil(t, TokenRefreshes)

	assert.NotNil(t, PingsSent)
	assert.NotNil(t, PingsTimedOut)
	assert.NotNil(t, ConsecutiveFailures)
	assert.NotNil(t, RepingInterval)
	assert.NotNil(t, PhoneResponding)

	assert.NotNil(t, PairingsStarted)
	assert.NotNil(t, PairingsCompleted)
	assert.NotNil(t, PairingDuration)
	assert.NotNil(t, AuthNetworkSelected)
}

func TestMetricsIncrement(t *testing.T) {
	PbliteEncodes.WithLabelValues("success").Inc()
	PbliteDecodes.WithLabelValues("pblite", "success").Inc()
	PbliteCodecDuration.WithLabelValues("encode").Observe(0.0002)

	RPCsSent.WithLabelValues("GetUpdates").Inc()
	RPCsAcked.WithLabelValues("success").Inc()
	RPCRoundTrip.Observe(0.15)

	StreamOpens.WithLabelValues("success").Inc()
	StreamActive.Set(1)
	ElementsReceived.Inc()
	UpdatesDeduped.Inc()
	EventsDispatched.WithLabelValues("data").Inc()
	TokenRefreshes.WithLabelValues("success").Inc()

	PingsSent.Inc()
	ConsecutiveFailures.Set(0)
	PhoneResponding.Set(1)

	PairingsStarted.Inc()
	PairingsCompleted.WithLabelValues("success").Inc()
	AuthNetworkSelected.WithLabelValues("google").Inc()

	assert.Greater(t, testutil.CollectAndCount(PbliteEncodes), 0)
	assert.Greater(t, testutil.CollectAndCount(RPCsSent), 0)
	assert.Greater(t, testutil.CollectAndCount(StreamOpens), 0)
	assert.Greater(t, testutil.CollectAndCount(PingsSent), 0)
	assert.Greater(t, testutil.CollectAndCount(PairingsStarted), 0)
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	h := Handler()
	assert.NotNil(t, h)
}
