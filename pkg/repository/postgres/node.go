package postgres

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
)

type nodeRow struct {
	ID         int64  `db:"id"`
	NodeID     []byte `db:"node_id"`
	NodeIDHigh int64  `db:"node_id_high"`
}

func (r nodeRow) toEntity() entity.Node {
	n := entity.Node{ID: r.ID, NodeIDHigh: uint64(r.NodeIDHigh)}
	copy(n.NodeID[:], r.NodeID)
	return n
}

// GetOrCreateNode returns the Node row for nodeID, creating it if absent.
func (s *Store) GetOrCreateNode(ctx context.Context, nodeID [32]byte) (entity.Node, error) {
	defer observe(ctx, "get_or_create_node")()

	high := int64(binary.BigEndian.Uint64(nodeID[:8]))

	const query = `
		INSERT INTO nodes (node_id, node_id_high)
		VALUES ($1, $2)
		ON CONFLICT (node_id) DO UPDATE SET node_id = nodes.node_id
		RETURNING id, node_id, node_id_high`

	var row nodeRow
	if err := s.db.GetContext(ctx, &row, query, nodeID[:], high); err != nil {
		return entity.Node{}, glerr.Conflict("get_or_create_node", fmt.Errorf("upsert node: %w", err))
	}
	return row.toEntity(), nil
}

type enrRow struct {
	ID              int64  `db:"id"`
	NodeID          int64  `db:"node_id"`
	SequenceNumber  int64  `db:"sequence_number"`
	RawPayload      []byte `db:"raw_payload"`
	ProtocolVersion *int16 `db:"protocol_version"`
}

func (r enrRow) toEntity() entity.NodeEnr {
	enr := entity.NodeEnr{
		ID:             r.ID,
		NodeID:         r.NodeID,
		SequenceNumber: uint64(r.SequenceNumber),
		RawPayload:     r.RawPayload,
	}
	if r.ProtocolVersion != nil {
		v := uint8(*r.ProtocolVersion)
		enr.ProtocolVersion = &v
	}
	return enr
}

// GetOrCreateEnr matches by (nodeID, sequenceNumber); on conflict it
// updates the raw payload, per spec.md §4.1.
func (s *Store) GetOrCreateEnr(ctx context.Context, nodeID int64, sequenceNumber uint64, rawPayload []byte, protocolVersion *uint8) (entity.NodeEnr, error) {
	defer observe(ctx, "get_or_create_enr")()

	var pv *int16
	if protocolVersion != nil {
		v := int16(*protocolVersion)
		pv = &v
	}

	const query = `
		INSERT INTO node_enrs (node_id, sequence_number, raw_payload, protocol_version)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (node_id, sequence_number) DO UPDATE SET raw_payload = EXCLUDED.raw_payload
		RETURNING id, node_id, sequence_number, raw_payload, protocol_version`

	var row enrRow
	if err := s.db.GetContext(ctx, &row, query, nodeID, int64(sequenceNumber), rawPayload, pv); err != nil {
		return entity.NodeEnr{}, glerr.Conflict("get_or_create_enr", fmt.Errorf("upsert node enr: %w", err))
	}
	return row.toEntity(), nil
}

type clientRow struct {
	ID            int64  `db:"id"`
	VersionString string `db:"version_string"`
}

func (r clientRow) toEntity() entity.Client {
	return entity.Client{ID: r.ID, VersionString: r.VersionString}
}

// GetOrCreateClient returns the Client row for versionString, creating it
// if absent.
func (s *Store) GetOrCreateClient(ctx context.Context, versionString string) (entity.Client, error) {
	defer observe(ctx, "get_or_create_client")()

	const query = `
		INSERT INTO clients (version_string)
		VALUES ($1)
		ON CONFLICT (version_string) DO UPDATE SET version_string = clients.version_string
		RETURNING id, version_string`

	var row clientRow
	if err := s.db.GetContext(ctx, &row, query, versionString); err != nil {
		return entity.Client{}, glerr.Conflict("get_or_create_client", fmt.Errorf("upsert client: %w", err))
	}
	return row.toEntity(), nil
}
