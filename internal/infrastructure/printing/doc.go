// Package printing renders receipt documents. ReceiptTemplate turns a
// receipt into HTML and ChromedpRenderer prints HTML to PDF through a
// headless Chrome, local or remote.
package printing
