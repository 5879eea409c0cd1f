package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"donation_portal/internal/app/port"

	"github.com/ethereum/go-ethereum/common"
)

const defaultWalletFilePath = "data/wallets.txt"

// WalletFileLoader implements the port.WalletProvider interface by loading wallets from a file.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, logger port.Logger) *WalletFileLoader {
	if filePath == "" {
		filePath = defaultWalletFilePath
	}
	return &WalletFileLoader{filePath: filePath, logger: logger}
}

// GetWallets reads checksummed wallet addresses from the file, one per line.
// Blank lines, comments and malformed addresses are skipped.
func (l *WalletFileLoader) GetWallets() ([]string, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var wallets []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !common.IsHexAddress(line) || !strings.HasPrefix(line, "0x") {
			l.logger.Info("Skipping invalid wallet address format", "file", l.filePath, "line_number", lineNum, "address", line)
			continue
		}
		wallets = append(wallets, common.HexToAddress(line).Hex())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}
	return wallets, nil
}
