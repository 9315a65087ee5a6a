// Package office wraps LibreOffice's headless converter. It turns PDF files
// into DOCX documents through the Writer PDF import filter.
package office
