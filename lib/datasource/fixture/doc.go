// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fixture is an in-memory data source answering option queries
// and series fetches from a fixed dataset.
//
// Datasets are authored as JSONC files (JSON with comments and trailing
// commas):
//
//	{
//	  "series": [
//	    {
//	      "profileType": "process_cpu:cpu:nanoseconds:cpu:nanoseconds",
//	      "labels": {"service_name": "ride-sharing-app", "vehicle": "car"},
//	      "values": [12, 15, 9, 22],
//	    },
//	  ],
//	}
//
// Values are spread evenly across the requested time range. A series
// fetch matches the request's selector against every stored series,
// then groups the matches by the request's group-by label (or sums
// them into one series when there is none).
//
// [Sample] serves a bundled dataset for demos and tests.
package fixture
