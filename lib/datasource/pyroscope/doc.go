// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pyroscope is a data source backed by a Pyroscope querier.
//
// Requests use the querier's Connect JSON endpoints:
//
//	POST /querier.v1.QuerierService/LabelValues
//	POST /querier.v1.QuerierService/LabelNames
//	POST /querier.v1.QuerierService/ProfileTypes
//	POST /querier.v1.QuerierService/SelectSeries
//
// Option queries are parsed with datasource.ParseOptionQuery and mapped
// onto the first three endpoints over a trailing lookback window. Series
// fetches map onto SelectSeries with the request's group-by label and a
// step chosen so that at most MaxPoints points come back.
package pyroscope
