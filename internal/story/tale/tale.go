package tale

import (
	"fmt"
	"strings"
)

// Option is one selectable entry in the story builder: a dinosaur, a story
// style, or a lesson to teach.
type Option struct {
	ID          string
	Name        string
	Description string
}

var Dinosaurs = []Option{
	{ID: "argentinosaur", Name: "Argentinosaurio", Description: "El gigante gentil"},
	{ID: "carnotaurus", Name: "Carnotaurus", Description: "El cazador con cuernos"},
	{ID: "stegosaurus", Name: "Estegosaurio", Description: "El de placas en la espalda"},
	{ID: "mosasaurus", Name: "Mosasaurio", Description: "El reptil marino"},
	{ID: "pterodactyl", Name: "Pterodáctilo", Description: "El que vuela"},
	{ID: "spinosaurus", Name: "Espinosaurio", Description: "El con vela en la espalda"},
	{ID: "trex", Name: "T-Rex", Description: "El rey de los dinosaurios"},
	{ID: "triceratops", Name: "Triceratops", Description: "El de tres cuernos"},
	{ID: "velociraptor", Name: "Velociraptor", Description: "El más rápido"},
}

var Styles = []Option{
	{ID: "adventure", Name: "Aventura", Description: "Emocionante y lleno de acción"},
	{ID: "friendship", Name: "Amistad", Description: "Historias de compañerismo"},
	{ID: "mystery", Name: "Misterio", Description: "Intriga y descubrimientos"},
}

var Lessons = []Option{
	{ID: "sharing", Name: "Compartir", Description: "La importancia de compartir"},
	{ID: "courage", Name: "Valentía", Description: "Ser valiente ante los miedos"},
	{ID: "kindness", Name: "Amabilidad", Description: "Ser amable con los demás"},
	{ID: "perseverance", Name: "Perseverancia", Description: "No rendirse nunca"},
}

// Find looks an option up by ID or display name, case-insensitively.
func Find(options []Option, key string) (Option, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt.ID, key) || strings.EqualFold(opt.Name, key) {
			return opt, true
		}
	}
	return Option{}, false
}

// Prompt builds the children's story prompt sent to the text backend.
// The stories are in Spanish, for listeners aged 3-8.
func Prompt(dinosaur, style, lesson string) string {
	return fmt.Sprintf(`Escribe un cuento corto para niños (máximo 300 palabras) en español sobre un dinosaurio %s.
El cuento debe ser de estilo %s y enseñar la lección de %s.
El cuento debe ser apropiado para niños de 3-8 años, con un lenguaje sencillo y una narrativa clara.
Incluye diálogos y describe las emociones del dinosaurio.
El cuento debe tener un inicio, desarrollo y final feliz.
NO incluyas títulos ni encabezados, solo el texto del cuento.`, dinosaur, style, lesson)
}
