package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type HasherSuite struct {
	suite.Suite
	hasher *Hasher
}

func TestHasherSuite(t *testing.T) {
	suite.Run(t, new(HasherSuite))
}

func (s *HasherSuite) SetupTest() {
	s.hasher = New(bcrypt.MinCost)
}

func (s *HasherSuite) verify(stored, password string) bool {
	ok, err := s.hasher.Verify(stored, password)
	s.Require().NoError(err)
	return ok
}

func (s *HasherSuite) TestHashIsTaggedBcrypt() {
	stored, err := s.hasher.Hash("hunter2")
	s.Require().NoError(err)

	s.True(strings.HasPrefix(stored, "bcrypt:$2"))
	s.NotContains(stored, "hunter2")
	s.Equal(SchemeBcrypt, Scheme(stored))
}

func (s *HasherSuite) TestHashRejectsEmptyPassword() {
	_, err := s.hasher.Hash("")
	s.ErrorIs(err, ErrEmptyPassword)
}

func (s *HasherSuite) TestVerifyBcrypt() {
	stored, err := s.hasher.Hash("hunter2")
	s.Require().NoError(err)

	s.True(s.verify(stored, "hunter2"))
	s.False(s.verify(stored, "Hunter2"))
	s.False(s.verify(stored, ""))
}

func (s *HasherSuite) TestVerifyUntaggedBcrypt() {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	s.Require().NoError(err)

	s.True(s.verify(string(hash), "pw"))
	s.False(s.verify(string(hash), "nope"))
	s.Equal(SchemeBcrypt, Scheme(string(hash)))
}

func (s *HasherSuite) TestVerifyTaggedPBKDF2() {
	stored := HashPBKDF2("a1b2c3d4", "secret")

	s.Equal(SchemePBKDF2, Scheme(stored))
	s.True(s.verify(stored, "secret"))
	s.False(s.verify(stored, "Secret"))
}

func (s *HasherSuite) TestVerifyLegacySaltColonHash() {
	legacy := strings.TrimPrefix(HashPBKDF2("0f1e2d3c4b5a6978", "secret"), SchemePBKDF2+":")

	s.Equal(SchemePBKDF2, Scheme(legacy))
	s.True(s.verify(legacy, "secret"))
	s.False(s.verify(legacy, "other"))
}

func (s *HasherSuite) TestVerifyPlaintext() {
	s.True(s.verify("plain:1234", "1234"))
	s.False(s.verify("plain:1234", "12345"))

	// Untagged values without a separator are legacy plaintext.
	s.True(s.verify("1234", "1234"))
	s.False(s.verify("1234", "4321"))
	s.Equal(SchemePlain, Scheme("1234"))
}

func (s *HasherSuite) TestVerifyPlaintextLookingLikeBcrypt() {
	for _, legacy := range []string{"$2go", "$2a$", "$2b$10$short"} {
		s.Equal(SchemePlain, Scheme(legacy), legacy)
		s.True(s.verify(legacy, legacy), legacy)
		s.False(s.verify(legacy, "other"), legacy)
	}
}

func (s *HasherSuite) TestVerifyMalformed() {
	_, err := s.hasher.Verify("pbkdf2-sha512:no-hash-part", "x")
	s.ErrorIs(err, ErrMalformed)

	_, err = s.hasher.Verify("salt:not-hex", "x")
	s.ErrorIs(err, ErrMalformed)

	_, err = s.hasher.Verify("bcrypt:garbage", "x")
	s.ErrorIs(err, ErrMalformed)
}

func (s *HasherSuite) TestZeroCostUsesDefault() {
	s.Equal(bcrypt.DefaultCost, New(0).cost)
}
