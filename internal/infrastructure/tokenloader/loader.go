package tokenloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"donation_portal/internal/app/port"
	"donation_portal/internal/domain/entity"
	"donation_portal/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

const defaultTokenDirectoryPath = "data/tokens"

// TokenFileLoader implements the port.TokenProvider interface.
// Each network's tokens live in <dir>/<identifier>.json.
type TokenFileLoader struct {
	tokenDirPath string
	logger       port.Logger
}

// NewTokenLoader creates a new TokenFileLoader.
func NewTokenLoader(tokenDirPath string, logger port.Logger) *TokenFileLoader {
	if tokenDirPath == "" {
		tokenDirPath = defaultTokenDirectoryPath
	}
	return &TokenFileLoader{tokenDirPath: tokenDirPath, logger: logger}
}

// GetTokensByNetwork reads the token file of every known network and validates chain ids and addresses.
// A missing directory yields no tokens; an unreadable or malformed file is skipped.
func (l *TokenFileLoader) GetTokensByNetwork(defs []entity.NetworkDefinition) (map[string][]entity.TokenInfo, error) {
	tokensByNetwork := make(map[string][]entity.TokenInfo)

	files, err := os.ReadDir(l.tokenDirPath)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("Token directory does not exist, no token files will be merged", "path", l.tokenDirPath)
			return tokensByNetwork, nil
		}
		return nil, fmt.Errorf("failed to read token directory %s: %w", l.tokenDirPath, err)
	}

	known := make(map[string]entity.NetworkDefinition, len(defs))
	for _, def := range defs {
		known[strings.ToLower(def.Identifier)] = def
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".json") {
			continue
		}

		identifier := strings.ToLower(strings.TrimSuffix(file.Name(), filepath.Ext(file.Name())))
		def, ok := known[identifier]
		if !ok {
			l.logger.Info("Token file found for an unknown network, skipping.", "file", file.Name())
			continue
		}

		filePath := filepath.Join(l.tokenDirPath, file.Name())
		tokens, err := utils.LoadTokensFromJSON(filePath)
		if err != nil {
			l.logger.Warn("Failed to load token file, skipping file.", "path", filePath, "error", err)
			continue
		}

		valid := make([]entity.TokenInfo, 0, len(tokens))
		for _, token := range tokens {
			if token.ChainID != def.ChainID {
				l.logger.Warn("Token has mismatched ChainID in file, skipping token.",
					"file", filePath, "token_symbol", token.Symbol,
					"token_chain_id", token.ChainID, "expected_chain_id", def.ChainID)
				continue
			}
			if !common.IsHexAddress(token.Address) || token.PriceFeedID == "" {
				l.logger.Warn("Token entry is incomplete, skipping token.",
					"file", filePath, "token_symbol", token.Symbol, "token_address", token.Address)
				continue
			}
			valid = append(valid, token)
		}

		if len(valid) > 0 {
			tokensByNetwork[identifier] = append(tokensByNetwork[identifier], valid...)
			l.logger.Info("Loaded tokens for network from file", "network", identifier, "file", file.Name(), "count", len(valid))
		}
	}
	return tokensByNetwork, nil
}
