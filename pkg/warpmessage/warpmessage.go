// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package warpmessage packs and unpacks the five fixed Warp payload kinds
// the validator and staking managers exchange with the P-Chain. Packing of
// all five payload kinds is delegated to avalanchego's own warp message
// codec and subnet-evm's uptime message, the same libraries the teacher's
// pkg/validatormanager imports as warpMessage/messages; RegisterL1Validator
// and ValidationUptime are also parsed through them, while the other three
// fixed-length kinds are unpacked here after checkFraming. Only
// ConversionData packing (a shape these
// libraries do not expose, since their own conversion-ID hash is derived
// from a ConvertSubnetTx rather than from the bare fields this package
// models) is packed by hand, the way the teacher's getSubnetConversionID
// does in pkg/validatormanager/validatormanager.go.
package warpmessage

import (
	"encoding/binary"

	"github.com/ava-labs/avalanchego/ids"
	avalanchegoWarpMessage "github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
	subnetEvmWarpMessages "github.com/ava-labs/subnet-evm/warp/messages"

	"github.com/ava-labs/l1-validator-manager/pkg/l1errors"
	"github.com/ava-labs/l1-validator-manager/pkg/utils"
)

// Kind discriminates the five wire message types by their type_id, per
// spec.md §4.1's single unified codec. The four avalanchego-backed kinds
// below share one codec and these type-ids hold for them. ValidationUptime
// is carried over a *different* codec (subnet-evm's warp/messages, which
// registers its own type-ids starting from 0) so KindValidationUptime is
// not used for wire framing — see UnpackValidationUptime.
type Kind uint32

const (
	KindSubnetToL1Conversion    Kind = 0
	KindRegisterL1Validator     Kind = 1
	KindL1ValidatorRegistration Kind = 2
	KindL1ValidatorWeight       Kind = 3
	KindValidationUptime        Kind = 4
)

const codecID uint16 = 0

// BLSPublicKeyLen is the fixed length of a validator's compressed BLS
// public key, per spec.md §3.
const BLSPublicKeyLen = 48

const (
	blsPublicKeyLen         = BLSPublicKeyLen
	subnetToL1ConversionLen = 2 + 4 + 32
	l1ValidatorRegistrationLen = 2 + 4 + 32 + 1
	l1ValidatorWeightLen    = 2 + 4 + 32 + 8 + 8
	validationUptimeLen     = 2 + 4 + 32 + 8
)

// PChainOwner mirrors spec.md's {threshold, addresses} tuple; threshold
// must never exceed len(addresses).
type PChainOwner struct {
	Threshold uint32
	Addresses []ids.ShortID
}

func (o PChainOwner) validate() error {
	if int(o.Threshold) > len(o.Addresses) {
		return l1errors.ErrInvalidPChainOwner
	}
	return nil
}

func (o PChainOwner) toAvalanchego() avalanchegoWarpMessage.PChainOwner {
	return avalanchegoWarpMessage.PChainOwner{
		Threshold: o.Threshold,
		Addresses: o.Addresses,
	}
}

// checkFraming validates the leading u16 codec_id || u32 type_id header
// against the expected kind, per spec.md §4.1.
func checkFraming(b []byte, want Kind, wantLen int) error {
	if len(b) != wantLen {
		return l1errors.InvalidMessageLength(len(b), wantLen)
	}
	if binary.BigEndian.Uint16(b[0:2]) != codecID {
		return l1errors.ErrInvalidCodecID
	}
	if Kind(binary.BigEndian.Uint32(b[2:6])) != want {
		return l1errors.ErrInvalidMessageType
	}
	return nil
}

// SubnetToL1ConversionMessage carries the hash identifying the initial
// validator set, signed by the P-Chain.
type SubnetToL1ConversionMessage struct {
	ConversionID ids.ID
}

func PackSubnetToL1Conversion(conversionID ids.ID) ([]byte, error) {
	payload, err := avalanchegoWarpMessage.NewSubnetConversion(conversionID)
	if err != nil {
		return nil, err
	}
	return payload.Bytes(), nil
}

func UnpackSubnetToL1Conversion(b []byte) (*SubnetToL1ConversionMessage, error) {
	if err := checkFraming(b, KindSubnetToL1Conversion, subnetToL1ConversionLen); err != nil {
		return nil, err
	}
	var id ids.ID
	copy(id[:], b[6:38])
	return &SubnetToL1ConversionMessage{ConversionID: id}, nil
}

// L1ValidatorRegistrationMessage acknowledges (or rejects) a registration
// request.
type L1ValidatorRegistrationMessage struct {
	ValidationID ids.ID
	Valid        bool
}

func PackL1ValidatorRegistration(validationID ids.ID, valid bool) ([]byte, error) {
	payload, err := avalanchegoWarpMessage.NewL1ValidatorRegistration(validationID, valid)
	if err != nil {
		return nil, err
	}
	return payload.Bytes(), nil
}

func UnpackL1ValidatorRegistration(b []byte) (*L1ValidatorRegistrationMessage, error) {
	if err := checkFraming(b, KindL1ValidatorRegistration, l1ValidatorRegistrationLen); err != nil {
		return nil, err
	}
	var id ids.ID
	copy(id[:], b[6:38])
	validByte := b[38]
	if validByte > 1 {
		return nil, l1errors.ErrInvalidWarpMessage
	}
	return &L1ValidatorRegistrationMessage{ValidationID: id, Valid: validByte == 1}, nil
}

// L1ValidatorWeightMessage carries the validator's latest cumulative weight
// at a given nonce.
type L1ValidatorWeightMessage struct {
	ValidationID ids.ID
	Nonce        uint64
	Weight       uint64
}

func PackL1ValidatorWeight(validationID ids.ID, nonce, weight uint64) ([]byte, error) {
	payload, err := avalanchegoWarpMessage.NewL1ValidatorWeight(validationID, nonce, weight)
	if err != nil {
		return nil, err
	}
	return payload.Bytes(), nil
}

func UnpackL1ValidatorWeight(b []byte) (*L1ValidatorWeightMessage, error) {
	if err := checkFraming(b, KindL1ValidatorWeight, l1ValidatorWeightLen); err != nil {
		return nil, err
	}
	var id ids.ID
	copy(id[:], b[6:38])
	nonce := binary.BigEndian.Uint64(b[38:46])
	weight := binary.BigEndian.Uint64(b[46:54])
	return &L1ValidatorWeightMessage{ValidationID: id, Nonce: nonce, Weight: weight}, nil
}

// ValidationUptimeMessage carries a node-signed uptime proof.
type ValidationUptimeMessage struct {
	ValidationID  ids.ID
	UptimeSeconds uint64
}

func PackValidationUptime(validationID ids.ID, uptimeSeconds uint64) ([]byte, error) {
	payload, err := subnetEvmWarpMessages.NewValidatorUptime(validationID, uptimeSeconds)
	if err != nil {
		return nil, err
	}
	return payload.Bytes(), nil
}

// UnpackValidationUptime parses through subnet-evm's own warp/messages
// codec rather than hand-checking the framing bytes against KindValidationUptime:
// NewValidatorUptime above delegates to that same codec, which registers
// ValidatorUptime at its own type-id (0, by that codec's registration
// order) rather than the spec's unified type-id 4. Parsing with the
// matching codec keeps Pack/Unpack symmetric, the same way
// UnpackRegisterL1Validator parses with avalanchego's ParseRegisterL1Validator
// rather than asserting a type-id by hand.
func UnpackValidationUptime(b []byte) (*ValidationUptimeMessage, error) {
	parsed, err := subnetEvmWarpMessages.ParseValidatorUptime(b)
	if err != nil {
		return nil, l1errors.ErrInvalidWarpMessage
	}
	return &ValidationUptimeMessage{ValidationID: parsed.ValidationID, UptimeSeconds: parsed.Uptime}, nil
}

// RegisterL1ValidatorMessage is the registration request built by
// initiate_validator_registration; its ID is the sha256 of its own wire
// bytes.
type RegisterL1ValidatorMessage struct {
	SubnetID              ids.ID
	NodeID                ids.NodeID
	BLSPublicKey          [blsPublicKeyLen]byte
	Expiry                uint64
	RemainingBalanceOwner PChainOwner
	DisableOwner          PChainOwner
	Weight                uint64
}

// PackRegisterL1Validator builds the wire bytes and derives validation_id
// = sha256(message_bytes), as spec.md §4.1 requires.
func PackRegisterL1Validator(m RegisterL1ValidatorMessage) ([]byte, ids.ID, error) {
	if err := m.RemainingBalanceOwner.validate(); err != nil {
		return nil, ids.Empty, err
	}
	if err := m.DisableOwner.validate(); err != nil {
		return nil, ids.Empty, err
	}
	payload, err := avalanchegoWarpMessage.NewRegisterL1Validator(
		m.SubnetID,
		m.NodeID,
		m.BLSPublicKey,
		m.Expiry,
		m.RemainingBalanceOwner.toAvalanchego(),
		m.DisableOwner.toAvalanchego(),
		m.Weight,
	)
	if err != nil {
		return nil, ids.Empty, err
	}
	return payload.Bytes(), payload.ValidationID(), nil
}

// UnpackRegisterL1Validator parses a registration request back into its
// fields and re-derives its validation_id, confirming the round-trip law
// sha256(pack(RegisterL1ValidatorMessage)) == validation_id.
func UnpackRegisterL1Validator(b []byte) (*RegisterL1ValidatorMessage, ids.ID, error) {
	parsed, err := avalanchegoWarpMessage.ParseRegisterL1Validator(b)
	if err != nil {
		return nil, ids.Empty, l1errors.ErrInvalidWarpMessage
	}
	if len(parsed.BLSPublicKey) != blsPublicKeyLen {
		return nil, ids.Empty, l1errors.ErrInvalidBLSPublicKey
	}
	m := &RegisterL1ValidatorMessage{
		SubnetID: parsed.SubnetID,
		NodeID:   parsed.NodeID,
		Expiry:   parsed.Expiry,
		RemainingBalanceOwner: PChainOwner{
			Threshold: parsed.RemainingBalanceOwner.Threshold,
			Addresses: parsed.RemainingBalanceOwner.Addresses,
		},
		DisableOwner: PChainOwner{
			Threshold: parsed.DisableOwner.Threshold,
			Addresses: parsed.DisableOwner.Addresses,
		},
		Weight: parsed.Weight,
	}
	copy(m.BLSPublicKey[:], parsed.BLSPublicKey)
	return m, parsed.ValidationID(), nil
}

// ConversionData authenticates the initial validator set admitted by
// initialize_validator_set.
type ConversionData struct {
	SubnetID           ids.ID
	ManagerBlockchainID ids.ID
	ManagerAddress     []byte // 20 bytes
	InitialValidators  []InitialValidator
}

// InitialValidator is one entry of the genesis validator set.
type InitialValidator struct {
	NodeID       ids.NodeID
	BLSPublicKey [blsPublicKeyLen]byte
	Weight       uint64
}

// Pack produces the canonical byte sequence spec.md §4.1 defines for
// ConversionData: subnet_id || manager_blockchain_id || u32 manager_addr_len
// || manager_addr || u32 num_initial_validators || Σ validators. No
// ecosystem library exposes this exact preimage (avalanchego's own
// conversion-ID hash is keyed off a ConvertSubnetTx id, not these bare
// fields), so it is packed by hand with encoding/binary, mirroring the
// teacher's getSubnetConversionID.
func (c ConversionData) Pack() []byte {
	buf := make([]byte, 0, 32+32+4+len(c.ManagerAddress)+4+len(c.InitialValidators)*(4+20+4+blsPublicKeyLen+8))
	buf = append(buf, c.SubnetID[:]...)
	buf = append(buf, c.ManagerBlockchainID[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.ManagerAddress)))
	buf = append(buf, c.ManagerAddress...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.InitialValidators)))
	for _, v := range c.InitialValidators {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(v.NodeID.Bytes())))
		buf = append(buf, v.NodeID.Bytes()...)
		buf = binary.BigEndian.AppendUint32(buf, blsPublicKeyLen)
		buf = append(buf, v.BLSPublicKey[:]...)
		buf = binary.BigEndian.AppendUint64(buf, v.Weight)
	}
	return buf
}

// ID returns conversion_id = sha256(pack(conversion_data)).
func (c ConversionData) ID() ids.ID {
	return utils.SHA256ToID(c.Pack())
}

// InitialValidationID derives validation_id_i = sha256(subnet_id || u32(i))
// for the i-th entry of a converted validator set.
func InitialValidationID(subnetID ids.ID, index uint32) ids.ID {
	buf := make([]byte, 0, 36)
	buf = append(buf, subnetID[:]...)
	buf = binary.BigEndian.AppendUint32(buf, index)
	return utils.SHA256ToID(buf)
}
