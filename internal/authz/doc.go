// Folio - Portfolio Gallery Delivery and Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

// Package authz decides who may do what in the gallery, using Casbin RBAC.
//
// # Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && r.act == p.act
//
// # Roles
//
// Roles inherit upward: admin includes viewer, which includes anonymous.
//
//	anonymous  read items, like, share, comment
//	viewer     + favorites
//	admin      everything, including comments:moderate and comments:reply
//
// The model and policy are embedded. EnforcerConfig.PolicyPath swaps in a
// policy file, reloaded every ReloadInterval.
//
// # Usage
//
//	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
//	if err := enforcer.Authorize(viewer, authz.ObjectModeration, authz.ActionWrite); err != nil {
//	    // errors.Is(err, media.ErrUnauthenticated) or media.ErrForbidden
//	}
//
//	mw := authz.NewMiddleware(enforcer, api.WriteAuthzError)
//	r.With(mw.Require(authz.ObjectFavorites, authz.ActionRead)).Get("/favorites", h)
package authz
