/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncreds enables Go developers to issue, hold and verify anonymous credentials with selective
// disclosure, predicates and revocation.
//
// # Packages for end developer usage
//
// pkg/anoncreds: Schema and credential definition registry, link secrets, issuance, revocation registries,
// presentations and their verification, plus the W3C data model variants of these operations.
//
// pkg/doc/anoncreds: The public and private entities exchanged between issuer, holder and verifier, with their
// JSON forms. pkg/doc/anoncreds/w3c holds the W3C credential and presentation documents.
//
// pkg/store/anoncreds: Persists public entities into any aries storage provider and resolves the inputs of a
// presentation.
//
// # Basic workflow
//
//  1. The issuer creates a schema, a credential definition and optionally a revocation registry.
//  2. The holder creates a link secret and answers a credential offer with a credential request.
//  3. The issuer signs the credential, the holder processes it.
//  4. The holder proves a presentation request, the verifier resolves the public inputs and verifies it.
package anoncreds
