// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

/*
Package metrics exposes Folio's Prometheus instrumentation.

All collectors are registered with the default registry through promauto and
served at /metrics by the API router.

# Available Metrics

HTTP:
  - folio_api_requests_total{method,endpoint,status_code}
  - folio_api_request_duration_seconds{method,endpoint}
  - folio_api_active_requests
  - folio_api_rate_limit_hits_total{endpoint}

Engagement:
  - folio_engagement_actions_total{action,result}
  - folio_engagement_sync_total{result}
  - folio_engagement_unsynced_entries

Recommendations, images and moderation:
  - folio_recommend_requests_total{personalized}
  - folio_recommend_duration_seconds
  - folio_image_checks_total{result}
  - folio_comments_submitted_total{type}
  - folio_comments_moderated_total{action}

Infrastructure:
  - folio_db_query_duration_seconds{operation,table}
  - folio_websocket_connections
  - folio_circuit_breaker_state{name}
*/
package metrics
